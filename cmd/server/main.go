// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/rockola/internal/api/connect"
	"github.com/osa030/rockola/internal/app/background"
	"github.com/osa030/rockola/internal/app/catalog"
	"github.com/osa030/rockola/internal/app/gate"
	"github.com/osa030/rockola/internal/app/media"
	"github.com/osa030/rockola/internal/app/notification"
	"github.com/osa030/rockola/internal/app/session"
	"github.com/osa030/rockola/internal/infra/catalogfile"
	"github.com/osa030/rockola/internal/infra/config"
	"github.com/osa030/rockola/internal/infra/logger"
	"github.com/osa030/rockola/internal/infra/player"
	"github.com/osa030/rockola/internal/infra/playlog"
)

var (
	app        = kingpin.New("rockola-server", "rockola kiosk jukebox server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Also write JSON logs to this file").String()
	quiet      = app.Flag("quiet", "No console logs when --logfile is set").Bool()
	noColor    = app.Flag("no-color", "Plain console logs").Bool()

	// scan command
	scanCmd  = app.Command("scan", "Scan the music directory and write the catalog")
	scanTags = scanCmd.Flag("tags", "Read titles from embedded tags").Bool()
	scanOut  = scanCmd.Flag("out", "Catalog file to write (default: library.catalog_path)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Level:   "info",
		File:    *logfile,
		Quiet:   *quiet,
		NoColor: *noColor,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}
	paths := resolvePaths(cfg, filepath.Dir(*configPath))

	if command == scanCmd.FullCommand() {
		if err := scan(paths); err != nil {
			zlog.Error().Msgf("Scan failed: %+v", err)
			os.Exit(1)
		}
		return
	}

	// The music library is the one directory the kiosk cannot run without
	if info, err := os.Stat(paths.music); err != nil || !info.IsDir() {
		zlog.Fatal().Msgf("Music directory not found: %s", paths.music)
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg, paths); err != nil {
		zlog.Error().Msgf("Server error: %+v", err)
		os.Exit(1)
	}
}

// resolvedPaths are the configured directories made absolute against the
// config file location.
type resolvedPaths struct {
	music      string
	catalog    string
	promo      string
	background string
	playlog    string
}

func resolvePaths(cfg *config.Config, base string) resolvedPaths {
	p := resolvedPaths{
		music:      config.ResolveDir(base, cfg.Library.MusicDir),
		promo:      config.ResolveDir(base, cfg.Media.PromoDir),
		background: config.ResolveDir(base, cfg.Media.BackgroundDir),
		playlog:    cfg.PlayLog.Path,
	}
	// The catalog lives in the music directory unless configured elsewhere
	p.catalog = config.ResolveDir(p.music, cfg.Library.CatalogPath)
	if p.playlog != "" && p.playlog != ":memory:" {
		p.playlog = config.ResolveDir(base, p.playlog)
	}
	return p
}

// scan rebuilds the catalog file from the music directory.
func scan(paths resolvedPaths) error {
	out := paths.catalog
	if *scanOut != "" {
		out = *scanOut
	}

	zlog.Info().Msgf("Scanning music directory: root=%s tags=%v", paths.music, *scanTags)
	scanner := &catalogfile.Scanner{Root: paths.music, ReadTags: *scanTags}
	songs, err := scanner.Scan()
	if err != nil {
		return err
	}
	if err := catalogfile.Write(out, songs); err != nil {
		return err
	}
	zlog.Info().Msgf("Catalog written: path=%s songs=%d", out, len(songs))
	return nil
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config, paths resolvedPaths) error {
	// Setup shutdown hook (defer ensures it runs on any exit from this function)
	defer executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	// Build the request gate from filter config
	gateChain, err := gate.Build(filterSettings(cfg))
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	index := catalog.Load(catalogfile.NewJSONSource(paths.catalog))

	gateway, err := media.NewGateway(media.Roots{
		Music:      paths.music,
		Promo:      paths.promo,
		Background: paths.background,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create media gateway")
	}

	selector, err := newSelector(cfg)
	if err != nil {
		return err
	}

	notifications := notification.NewManager()
	deps := session.Deps{
		Index:       index,
		Gateway:     gateway,
		Backgrounds: selector,
		Gate:        gateChain,
		Notifier:    notifications,
	}

	// Optional play log
	var history apiconnect.History
	if paths.playlog != "" {
		store, err := playlog.Open(paths.playlog)
		if err != nil {
			return errors.Wrap(err, "failed to open play log")
		}
		defer store.Close()
		deps.Recorder = store
		history = store
	}

	// Optional local player; without one the kiosk display plays the media
	var surface *player.ExecSurface
	if len(cfg.Player.Command) > 0 {
		surface, err = player.New(player.Config{
			Command:  cfg.Player.Command,
			LoopArgs: cfg.Player.LoopArgs,
		})
		if err != nil {
			return errors.Wrap(err, "invalid player config")
		}
		deps.Surface = surface
	}

	engine, err := session.NewEngine(session.Config{
		InitialCredits: cfg.InitialCredits(),
		UpcomingCount:  cfg.Kiosk.UpcomingCount,
		NoticeDuration: cfg.NoticeDuration(),
		PromoFile:      cfg.Media.PromoFile,
		Messages:       cfg.GetMessage,
	}, deps)
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	if surface != nil {
		surface.Bind(engine)
	}

	// Create RPC services
	kioskService := apiconnect.NewKioskService(engine, notifications, apiconnect.KioskSettings{
		PageSize:         cfg.Kiosk.PageSize,
		UpcomingCount:    cfg.Kiosk.UpcomingCount,
		NoticeDurationMs: cfg.Kiosk.NoticeDurationMs,
	})
	operatorService := apiconnect.NewOperatorService(engine, history)

	// Create HTTP mux
	mux := http.NewServeMux()

	// Register services
	kioskPath, kioskHandler := apiconnect.NewKioskServiceHandler(kioskService)

	// Create operator auth interceptor
	operatorAuthInterceptor := apiconnect.NewOperatorAuthInterceptor(cfg.Operator.Token)
	operatorPath, operatorHandler := apiconnect.NewOperatorServiceHandler(
		operatorService,
		connect.WithInterceptors(operatorAuthInterceptor),
	)

	mux.Handle(kioskPath, kioskHandler)
	mux.Handle(operatorPath, operatorHandler)

	// Create server with h2c (HTTP/2 cleartext) support
	serverAddr := cfg.Server.Addr
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start session
	engine.Start()

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		// Signal that we're about to start listening
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		runErr = errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close the session first to terminate active streams
	engine.Close()
	notifications.Close()
	if surface != nil {
		surface.Wait()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return runErr
}

// filterSettings converts the filter section of the config.
func filterSettings(cfg *config.Config) map[string]gate.Settings {
	out := make(map[string]gate.Settings, len(cfg.Filters))
	for name, f := range cfg.Filters {
		out[name] = gate.Settings{Enabled: f.Enabled, Settings: f.Settings}
	}
	return out
}

// newSelector builds the background selector from the configured clips.
func newSelector(cfg *config.Config) (*background.Selector, error) {
	clips := make([]background.Clip, 0, len(cfg.Media.Backgrounds))
	for _, bg := range cfg.Media.Backgrounds {
		ref, err := media.RefFor(media.NamespaceBackground, bg.File)
		if err != nil {
			return nil, errors.Wrapf(err, "background %s", bg.ID)
		}
		clips = append(clips, background.Clip{ID: bg.ID, Ref: ref})
	}
	selector, err := background.NewSelector(clips, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create background selector")
	}
	return selector, nil
}

// printFilters prints available filters.
func printFilters() {
	registry := gate.GetRegistered()
	names := lo.Keys(registry)
	slices.Sort(names)

	fmt.Println("Available Filters:")
	builtin := gate.NewControlsLockedFilter()
	fmt.Printf("  %-30s - %s [codes: %s] (always on)\n",
		builtin.Name(), builtin.Description(), strings.Join(builtin.ReturnCodes(), ", "))
	for _, name := range names {
		f := registry[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", name, f.Description(), codes)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
