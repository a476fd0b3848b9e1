// Package main provides the kiosk CLI entry point for testing.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/rockola/internal/api/connect"
)

var (
	app    = kingpin.New("rockola-kioskcli", "rockola kiosk client for testing")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()

	// songs command
	songsCmd   = app.Command("songs", "List one page of the catalog")
	songsPage  = songsCmd.Flag("page", "Page number").Default("1").Int()
	songsLimit = songsCmd.Flag("limit", "Songs per page").Default("20").Int()
	songsGenre = songsCmd.Flag("genre", "Only this genre").String()

	// genres command
	genresCmd = app.Command("genres", "List genres")

	// code command
	codeCmd   = app.Command("code", "Enter a song code")
	codeValue = codeCmd.Arg("code", "Five character song code").Required().String()

	// skip command
	skipCmd = app.Command("skip", "Skip the current song")

	// ended command
	endedCmd = app.Command("ended", "Report that the current media ended")
	endedSeq = endedCmd.Arg("seq", "Seq from the play notification").Required().Uint64()

	// error command
	errorCmd    = app.Command("error", "Report that the current media failed")
	errorSeq    = errorCmd.Arg("seq", "Seq from the play notification").Required().Uint64()
	errorDetail = errorCmd.Arg("detail", "Error detail").Default("playback failed").String()

	// background command
	backgroundCmd = app.Command("background", "Pick a background clip")

	// subscribe command
	subscribeCmd = app.Command("subscribe", "Subscribe to notifications")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Create client
	client := apiconnect.NewKioskClient(http.DefaultClient, *server)

	ctx := context.Background()

	// Execute command
	switch command {
	case songsCmd.FullCommand():
		listSongs(ctx, client, *songsPage, *songsLimit, *songsGenre)
	case genresCmd.FullCommand():
		listGenres(ctx, client)
	case codeCmd.FullCommand():
		enterCode(ctx, client, *codeValue)
	case skipCmd.FullCommand():
		res, err := client.Skip(ctx)
		exitOnError(err)
		printResult(res)
	case endedCmd.FullCommand():
		exitOnError(client.PlaybackEnded(ctx, *endedSeq))
		fmt.Println("Reported: ended")
	case errorCmd.FullCommand():
		exitOnError(client.PlaybackError(ctx, *errorSeq, *errorDetail))
		fmt.Println("Reported: error")
	case backgroundCmd.FullCommand():
		res, err := client.GetBackground(ctx)
		exitOnError(err)
		fmt.Printf("Background %v: %v (%v)\n", res["id"], res["location"], res["ref"])
	case subscribeCmd.FullCommand():
		subscribe(ctx, client)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func listSongs(ctx context.Context, client *apiconnect.KioskClient, page, limit int, genre string) {
	res, err := client.ListSongs(ctx, page, limit, genre)
	exitOnError(err)

	fmt.Printf("Page %v/%v (%v songs)\n", res["current_page"], res["total_pages"], res["total_songs"])
	songs, _ := res["songs"].([]any)
	for _, raw := range songs {
		s, _ := raw.(map[string]any)
		fmt.Printf("  %v  %-30v %-25v [%v]\n", s["id"], s["title"], s["artist"], s["genre"])
	}
}

func listGenres(ctx context.Context, client *apiconnect.KioskClient) {
	genres, err := client.ListGenres(ctx)
	exitOnError(err)
	for _, g := range genres {
		fmt.Println(g)
	}
}

func enterCode(ctx context.Context, client *apiconnect.KioskClient, code string) {
	res, err := client.EnterCode(ctx, code)
	exitOnError(err)

	if accepted, _ := res["accepted"].(bool); accepted {
		fmt.Printf("Success: %v\n", res["message"])
	} else {
		fmt.Printf("Rejected [%v]: %v\n", res["code"], res["message"])
	}
}

func printResult(res map[string]any) {
	if ok, _ := res["success"].(bool); ok {
		fmt.Printf("Success: %v\n", res["message"])
	} else {
		fmt.Printf("Failed: %v\n", res["message"])
	}
}

func subscribe(ctx context.Context, client *apiconnect.KioskClient) {
	stream, err := client.Subscribe(ctx)
	exitOnError(err)

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		os.Exit(0)
	}()

	// Receive notifications
	for stream.Receive() {
		printNotification(stream.Msg().AsMap())
	}

	if err := stream.Err(); err != nil {
		fmt.Printf("Stream error: %v\n", err)
	}
}

func printNotification(n map[string]any) {
	fmt.Printf("\n[Sequence: %v] === %v ===\n", n["sequence_no"], n["type"])

	if s, ok := n["session"].(map[string]any); ok {
		fmt.Printf("  Credits: %v  Mode: %v  Playback: %v\n", s["credits"], s["mode"], s["playback_state"])
		fmt.Printf("  Controls Locked: %v  Promo: %v  Queue: %v\n", s["controls_locked"], s["promo_active"], s["queue_size"])
	}
	if t, ok := n["track"].(map[string]any); ok {
		fmt.Printf("  Now Playing: %v - %v (%v)\n", t["artist"], t["title"], t["id"])
	}
	if up, ok := n["upcoming"].([]any); ok {
		fmt.Println("  Upcoming:")
		for i, raw := range up {
			t, _ := raw.(map[string]any)
			fmt.Printf("    %d. %v - %v\n", i+1, t["artist"], t["title"])
		}
	}
	if nt, ok := n["notice"].(map[string]any); ok {
		fmt.Printf("  Notice [%v]: %v\n", nt["code"], nt["message"])
	}
	if p, ok := n["play"].(map[string]any); ok {
		fmt.Printf("  Play [%v]: %v (loop=%v)\n", p["seq"], p["location"], p["loop"])
	}
}
