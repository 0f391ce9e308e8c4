package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/bracket-harvest/internal/config"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
)

// Setup starts tracing and profiling and returns one shutdown for both.
func Setup(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	shutdownTracing, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	stopProfiling, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	return func(ctx context.Context) error {
		return errors.Join(stopProfiling(), shutdownTracing(ctx))
	}, nil
}
