// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/careersinmusic/internal/api/connect"
	"github.com/osa030/careersinmusic/internal/app/explorer"
	"github.com/osa030/careersinmusic/internal/app/player"
	"github.com/osa030/careersinmusic/internal/app/session"
	"github.com/osa030/careersinmusic/internal/domain/chronology"
	"github.com/osa030/careersinmusic/internal/infra/config"
	"github.com/osa030/careersinmusic/internal/infra/logger"
	"github.com/osa030/careersinmusic/internal/infra/musicbrainz"
	"github.com/osa030/careersinmusic/internal/infra/ratelimit"
	"github.com/osa030/careersinmusic/internal/infra/spotify"
)

var (
	app        = kingpin.New("careers-server", "Careers in Music explorer server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	logFormat  = app.Flag("log-format", "Log format: console or json").Default("").Enum("", "console", "json")

	// check-config command
	checkConfigCmd = app.Command("check-config", "Validate the config file and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
		Format: *logFormat,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == checkConfigCmd.FullCommand() {
		printConfigSummary(cfg)
		return
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	limiter := ratelimit.New(cfg.MusicBrainz.MinInterval())
	mbClient, err := musicbrainz.New(musicbrainz.Config{
		BaseURL:         cfg.MusicBrainz.BaseURL,
		CoverArtURL:     cfg.MusicBrainz.CoverArtURL,
		UserAgent:       cfg.MusicBrainz.UserAgent,
		Timeout:         cfg.MusicBrainz.Timeout(),
		ReissueKeywords: cfg.Filters.ReissueKeywords,
		Limits: musicbrainz.SearchLimits{
			Artist:       cfg.Limits.ArtistSearch,
			ReleaseTitle: cfg.Limits.TitleSearch,
			Release:      cfg.Limits.ReleaseSearch,
			Browse:       musicbrainz.DefaultSearchLimits().Browse,
		},
		RecentYear:  cfg.Limits.RecentYear,
		RecentCount: cfg.Limits.RecentCount,
	}, limiter)
	if err != nil {
		return errors.Wrap(err, "failed to create MusicBrainz client")
	}
	zlog.Info().Msgf("MusicBrainz client ready: base_url=%s min_interval=%s", cfg.MusicBrainz.BaseURL, limiter.Interval())

	// The Spotify client is only needed by the catalog provider
	var searcher player.AlbumSearcher
	if cfg.HasProvider(config.ProviderSpotifyCatalog) {
		spotifyClient, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create Spotify client")
		}
		searcher = spotifyClient
	}

	players, err := player.NewProviderChainFromConfig(cfg, searcher)
	if err != nil {
		return errors.Wrap(err, "failed to create player provider chain")
	}
	zlog.Info().Msgf("Player provider chain: %s", players.Name())

	explorerSvc := explorer.NewService(mbClient, players, explorerOptions(cfg))
	sessionMgr := session.NewManager(explorerSvc, cfg.Server.SessionIdle())

	mux := http.NewServeMux()
	path, handler := apiconnect.NewExplorerServiceHandler(
		apiconnect.NewExplorerService(sessionMgr),
		connect.WithInterceptors(apiconnect.NewLoggingInterceptor()),
	)
	mux.Handle(path, handler)

	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    serverAddr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go sessionMgr.Start(ctx)

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		sessionMgr.Close()
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close sessions first to end running workflows and watch streams
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

func explorerOptions(cfg *config.Config) explorer.Options {
	return explorer.Options{
		Tracks:         cfg.Limits.Tracks,
		Contributors:   cfg.Limits.Contributors,
		LinkCandidates: cfg.Limits.LinkCandidates,
		CoverWorkers:   cfg.Limits.CoverWorkers,
		Era:            chronology.Era{From: cfg.Limits.EraFrom, To: cfg.Limits.EraTo},
		Discography:    chronology.Era{From: cfg.Limits.DiscographyFrom, To: cfg.Limits.DiscographyTo},
	}
}

// printConfigSummary prints the effective configuration.
func printConfigSummary(cfg *config.Config) {
	fmt.Println("Config OK")
	fmt.Printf("  %-22s %s\n", "addr", cfg.Server.Addr)
	fmt.Printf("  %-22s %s\n", "musicbrainz", cfg.MusicBrainz.BaseURL)
	fmt.Printf("  %-22s %s\n", "min interval", cfg.MusicBrainz.MinInterval())
	fmt.Printf("  %-22s %d-%d\n", "era", cfg.Limits.EraFrom, cfg.Limits.EraTo)
	fmt.Printf("  %-22s %d-%d\n", "discography years", cfg.Limits.DiscographyFrom, cfg.Limits.DiscographyTo)
	fmt.Println("  player providers:")
	for i, p := range cfg.Player.Providers {
		fmt.Printf("    %d. %-18s (%s)\n", i+1, p.DisplayName, p.Type)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	log := logger.Component("hooks")
	log.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		log.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			log.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
