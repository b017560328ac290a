// Package main implements the entry point for the BlogStream
// application. BlogStream serves a GraphQL API over an in-memory blog
// dataset with live subscriptions for new posts and comments.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/c360/blogstream/blog"
	"github.com/c360/blogstream/config"
	gateway "github.com/c360/blogstream/gateway/graphql"
	"github.com/c360/blogstream/metric"
	"github.com/c360/blogstream/pubsub"
	"github.com/c360/blogstream/store"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "blogstream"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printHelp()
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	// CLI flags win over file and environment
	if cliCfg.LogLevel != "" {
		cfg.Log.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Log.Format = cliCfg.LogFormat
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	slog.Info("Starting BlogStream",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	registry := metric.NewRegistry()

	st := store.New()
	if cfg.Store.Seed {
		store.Seed(st)
		users, posts, comments := st.Counts()
		logger.Info("Demo dataset loaded",
			"users", users, "posts", posts, "comments", comments)
	}

	broker := pubsub.NewBroker(
		pubsub.WithBufferSize(cfg.PubSub.BufferSize),
		pubsub.WithMetrics(registry.Metrics.EventsPublished, registry.Metrics.EventsDropped),
	)

	service := blog.NewService(st, broker, blog.WithLogger(logger))

	server, err := gateway.NewServer(cfg.Gateway, gateway.NewResolver(service), logger, registry)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	if err := server.Setup(); err != nil {
		return fmt.Errorf("gateway setup: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.Start(ctx, nil)
	})

	group.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Received shutdown signal", "signal", sig.String())
			if err := server.Stop(cliCfg.ShutdownTimeout); err != nil {
				return err
			}
			cancel()
			return nil
		case <-ctx.Done():
			return nil
		}
	})

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info("BlogStream stopped")
	return nil
}
