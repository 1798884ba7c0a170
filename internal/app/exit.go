package app

import (
	"context"
	"errors"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps a run error to the process exit status. Interrupts exit
// cleanly.
func ExitCode(err error) int {
	var ue *types.UsageError
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return ExitOK
	case errors.As(err, &ue):
		return ExitUsage
	default:
		return ExitFailure
	}
}
