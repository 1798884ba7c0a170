// cmd/wxrecord/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlSimons/graph-ambient-weather/internal/app"
	"github.com/AlSimons/graph-ambient-weather/internal/cli"
	"github.com/AlSimons/graph-ambient-weather/internal/config"
	"github.com/AlSimons/graph-ambient-weather/internal/logging"
)

const (
	appName = "wxrecord"
	// Default version is "dev" if not set with -ldflags "-X main.version=..."
	version = "dev"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(app.ExitFailure)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(app.ExitFailure)
	}
	if err := cli.ParseRecord(appName, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, cli.ErrHelp) {
			os.Exit(app.ExitOK)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.ExitUsage)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunRecorder(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(app.ExitCode(err))
	}

	slog.Info("shutting down")
}
