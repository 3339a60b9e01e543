package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franckalain/winelens/internal/auth"
	"github.com/franckalain/winelens/internal/clientconfig"
	"github.com/franckalain/winelens/internal/config"
	"github.com/franckalain/winelens/internal/logging"
	"github.com/franckalain/winelens/internal/ml"
	"github.com/franckalain/winelens/internal/search"
	"github.com/franckalain/winelens/internal/server"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const name = "winelens"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    name,
		Usage:   "Wine label analysis and bottle image search backend",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to configuration file",
				Value: config.GetConfigPath(),
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "port to listen on (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error (overrides config)",
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// Load configuration
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port := cmd.String("port"); port != "" {
		cfg.Server.Port = port
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	logging.Setup(cfg.Log)
	slog.Info("starting "+name, "version", version, "commit", commit)

	// Initialize credential verifier
	verifier, err := auth.NewVerifier(cfg.Auth, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	// Initialize vision model
	model, err := ml.NewModel(cfg.ML)
	if err != nil {
		return fmt.Errorf("failed to create vision model: %w", err)
	}
	if err := model.Load(ctx); err != nil {
		return fmt.Errorf("failed to load vision model: %w", err)
	}
	defer model.Close()

	// Initialize image search
	searcher, err := search.NewGoogleSearcher(ctx, cfg.Search)
	if err != nil {
		return fmt.Errorf("failed to create image searcher: %w", err)
	}

	client, err := clientconfig.Resolve(cfg.Client)
	if err != nil {
		return fmt.Errorf("failed to resolve client configuration: %w", err)
	}

	slog.Info("server config",
		"port", cfg.Server.Port,
		"authMode", cfg.Auth.Mode,
		"visionProvider", cfg.ML.Provider,
		"visionConfigured", model.Configured(),
		"searchConfigured", searcher.Configured(),
	)

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ShutdownTimeout: cfg.ShutdownTimeout(),
	}, verifier, model, searcher, client)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
