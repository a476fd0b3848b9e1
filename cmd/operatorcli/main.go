// Package main provides the operator CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/rockola/internal/api/connect"
)

var (
	app    = kingpin.New("rockola-operatorcli", "rockola operator client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Operator token (or set ROCKOLA_OPERATOR_TOKEN env)").Envar("ROCKOLA_OPERATOR_TOKEN").String()

	// credit command
	creditCmd   = app.Command("credit", "Add credits, as coins would")
	creditCount = creditCmd.Arg("count", "Number of credits").Default("1").Int()

	// enqueue command
	enqueueCmd = app.Command("enqueue", "Queue a song without spending a credit")
	enqueueID  = enqueueCmd.Arg("id", "Song ID").Required().String()

	// skip command
	skipCmd = app.Command("skip", "Skip the current song")

	// advance command
	advanceCmd = app.Command("advance", "Drop the current song and play the next one").Alias("next")

	// stop command
	stopCmd = app.Command("stop", "Stop playback, keeping the queue")

	// status command
	statusCmd = app.Command("status", "Get session status")

	// history command
	historyCmd   = app.Command("history", "Show the play log")
	historyCount = historyCmd.Flag("count", "Number of entries").Short('n').Default("20").Int()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Check operator token
	if *token == "" {
		fmt.Println("Error: operator token is required (use --token or ROCKOLA_OPERATOR_TOKEN env)")
		os.Exit(1)
	}

	// Create client
	client := apiconnect.NewOperatorClient(http.DefaultClient, *server, *token)

	ctx := context.Background()

	// Execute command
	switch command {
	case creditCmd.FullCommand():
		addCredits(ctx, client, *creditCount)
	case enqueueCmd.FullCommand():
		enqueue(ctx, client, *enqueueID)
	case skipCmd.FullCommand():
		skip(ctx, client)
	case advanceCmd.FullCommand():
		res, err := client.Advance(ctx)
		exitOnError(err)
		printStatus(res)
	case stopCmd.FullCommand():
		res, err := client.Stop(ctx)
		exitOnError(err)
		printStatus(res)
	case statusCmd.FullCommand():
		res, err := client.GetStatus(ctx)
		exitOnError(err)
		printStatus(res)
	case historyCmd.FullCommand():
		history(ctx, client, *historyCount)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func addCredits(ctx context.Context, client *apiconnect.OperatorClient, count int) {
	var (
		res map[string]any
		err error
	)
	for i := 0; i < count; i++ {
		res, err = client.AddCredit(ctx)
		exitOnError(err)
	}
	fmt.Printf("Credits: %v (%v)\n", res["credits"], res["mode"])
}

func enqueue(ctx context.Context, client *apiconnect.OperatorClient, id string) {
	res, err := client.Enqueue(ctx, id)
	exitOnError(err)
	fmt.Printf("Queued: %v - %v (%v)\n", res["artist"], res["title"], res["id"])
}

func skip(ctx context.Context, client *apiconnect.OperatorClient) {
	res, err := client.Skip(ctx)
	exitOnError(err)

	if ok, _ := res["success"].(bool); ok {
		fmt.Println("Song skipped")
	} else {
		fmt.Printf("Failed: %v\n", res["message"])
	}
}

func printStatus(s map[string]any) {
	fmt.Println("\n=== CURRENT SESSION STATUS ===")
	fmt.Printf("Session ID: %v\n", s["session_id"])
	fmt.Printf("Credits: %v (%v)\n", s["credits"], s["mode"])
	fmt.Printf("Playback: %v\n", s["playback_state"])
	fmt.Printf("Controls Locked: %v\n", s["controls_locked"])
	fmt.Printf("Promo Active: %v\n", s["promo_active"])
	fmt.Printf("Queue Size: %v\n", s["queue_size"])
	fmt.Printf("Catalog: %v songs", s["catalog_size"])
	if degraded, _ := s["catalog_degraded"].(bool); degraded {
		fmt.Print(" (unavailable)")
	}
	fmt.Println()
	fmt.Printf("Played: %v  Skipped: %v  Errors: %v\n", s["played"], s["skipped"], s["errors"])

	if t, ok := s["now_playing"].(map[string]any); ok {
		fmt.Println("\nCurrently Playing:")
		fmt.Printf("  %v - %v (%v)\n", t["artist"], t["title"], t["id"])
		fmt.Printf("  Path: %v\n", t["path"])
	} else {
		fmt.Println("\nNo song currently playing")
	}

	if up, ok := s["upcoming"].([]any); ok && len(up) > 0 {
		fmt.Println("\nUpcoming:")
		for i, raw := range up {
			t, _ := raw.(map[string]any)
			fmt.Printf("  %d. %v - %v (%v)\n", i+1, t["artist"], t["title"], t["id"])
		}
	}

	if n, ok := s["notice"].(map[string]any); ok {
		fmt.Printf("\nNotice [%v]: %v\n", n["code"], n["message"])
	}
	fmt.Println()
}

func history(ctx context.Context, client *apiconnect.OperatorClient, count int) {
	res, err := client.GetHistory(ctx, count)
	exitOnError(err)

	entries, _ := res["entries"].([]any)
	fmt.Printf("Play log (%d):\n", len(entries))
	for _, raw := range entries {
		e, _ := raw.(map[string]any)
		line := fmt.Sprintf("  %v  %-12v %v", e["at"], e["kind"], e["path"])
		if d, _ := e["detail"].(string); d != "" {
			line += "  (" + d + ")"
		}
		fmt.Println(line)
	}
}
