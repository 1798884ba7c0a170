// cmd/wxplot2/main.go
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
	appName = "wxplot2"
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

	opts, err := cli.ParsePlot(appName, args, 2, cfg, os.Stdout)
	if errors.Is(err, cli.ErrHelp) {
		return app.ExitOK
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return app.ExitUsage
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := app.RunPlot(ctx, cfg, opts, os.Stdout, logger); err != nil {
		code := app.ExitCode(err)
		if code == app.ExitUsage {
			fmt.Fprintln(os.Stderr, err)
		} else if code != app.ExitOK {
			slog.Error("plot failed", "err", err)
		}
		return code
	}
	return app.ExitOK
}
