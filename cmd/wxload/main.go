// cmd/wxload/main.go
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
	appName = "wxload"
	// Default version is "dev" if not set with -ldflags "-X main.version=..."
	version = "dev"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return app.ExitFailure
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return app.ExitFailure
	}

	opts, err := cli.ParseLoad(appName, args, cfg, os.Stdout)
	if errors.Is(err, cli.ErrHelp) {
		return app.ExitOK
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return app.ExitUsage
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)
	slog.Info("starting", "command", opts.Command, "sqlite_path", cfg.SQLitePath, "log_level", cfg.LogLevel.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunLoad(ctx, cfg, opts, logger); err != nil {
		code := app.ExitCode(err)
		if code == app.ExitUsage {
			fmt.Fprintln(os.Stderr, err)
		} else if code != app.ExitOK {
			slog.Error("load failed", "err", err)
		}
		return code
	}
	return app.ExitOK
}
