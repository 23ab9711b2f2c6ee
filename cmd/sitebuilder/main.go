package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/publish"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
		Addr string `short:"a" help:"Listen address, overrides the config file"`
	} `cmd:"" help:"Start the page editor server"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	// .env is optional; real deployments set SITEBUILDER_* directly
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Serve.Addr != "" {
			cfg.Server.Addr = CLI.Serve.Addr
		}
		setupLogging(cfg)
		if err := runServe(cfg); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case "init":
		setupLogging(config.Default())
		slog.Info("Initializing configuration", "path", CLI.Config, "force", CLI.Init.Force)
		if err := config.WriteExample(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sitebuilder %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runServe(cfg *config.Config) error {
	slog.Info("Starting sitebuilder", "version", version.Version, "config", cfg.String())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()

	pruner, err := store.NewPruner(st,
		config.Duration(cfg.Storage.RevisionRetention, 0),
		config.Duration(cfg.Storage.PruneInterval, 0))
	if err != nil {
		return err
	}
	pruner.Start()
	defer func() {
		if err := pruner.Stop(); err != nil {
			slog.Warn("Failed to stop pruner", "error", err)
		}
	}()

	var publisher publish.Publisher = publish.NopPublisher{}
	if cfg.Publish.Enabled() {
		p, err := publish.NewNATSPublisher(cfg.Publish.NATSURL, cfg.Publish.Subject)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	registry := prometheus.NewRegistry()
	srv := server.New(cfg, server.Options{
		Store:     st,
		Layouts:   cfg.BuildLayouts(),
		Bus:       events.NewBus(),
		Recorder:  metrics.NewPrometheusRecorder(registry),
		Registry:  registry,
		Publisher: publisher,
	})

	watcher, err := config.NewWatcher(CLI.Config, func(_ context.Context, newCfg *config.Config) error {
		// only log-level changes apply without a restart today; layouts are
		// picked up by new sessions on the next open
		setupLogging(newCfg)
		return nil
	})
	if err != nil {
		slog.Warn("Config watcher unavailable", "error", err)
	} else {
		if err := watcher.Start(ctx); err != nil {
			slog.Warn("Config watcher failed to start", "error", err)
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				slog.Warn("Failed to stop config watcher", "error", err)
			}
		}()
	}

	return srv.Start(ctx)
}
