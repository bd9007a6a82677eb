// Package worker runs background loops on a fixed interval with context
// cancellation and panic recovery. The dashboard uses it to watch the
// dataset file for changes.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFieldWorker = "worker"
	logFieldTick   = "tick"
)

// TickFunc is called on every tick. Errors are reported to OnError or logged.
type TickFunc func(ctx context.Context) error

// Config configures the worker loop behavior.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// Interval is the time between ticks. A non-positive interval
	// disables ticking and the loop only waits for cancellation.
	Interval time.Duration

	// OnTick is called each interval.
	OnTick TickFunc

	// RunOnStart runs OnTick immediately when starting.
	RunOnStart bool

	// OnStart is called once when the loop starts.
	OnStart func(ctx context.Context)

	// OnStop is called once when the loop exits.
	OnStop func()

	// OnError is called when OnTick returns an error.
	// Return true to continue, false to exit the loop.
	OnError func(err error) bool

	// Logger for the worker.
	Logger *zerolog.Logger
}

// Loop runs the worker until ctx is canceled or OnError asks it to stop.
// Returns a wrapped context error on cancellation, or the fatal tick error.
func Loop(ctx context.Context, cfg Config) error {
	logger := getLogger(cfg.Logger)
	logger.Info().Str(logFieldWorker, cfg.Name).Dur("interval", cfg.Interval).Msg("starting worker loop")

	if cfg.OnStart != nil {
		cfg.OnStart(ctx)
	}

	defer func() {
		if cfg.OnStop != nil {
			cfg.OnStop()
		}

		logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker loop stopped")
	}()

	if cfg.RunOnStart {
		if err := runTick(ctx, cfg, logger, 0); err != nil {
			return err
		}
	}

	if cfg.Interval <= 0 {
		<-ctx.Done()

		return checkCanceled(ctx, cfg.Name)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return checkCanceled(ctx, cfg.Name)
		case <-ticker.C:
			if err := runTick(ctx, cfg, logger, tick); err != nil {
				return err
			}
		}
	}
}

func runTick(ctx context.Context, cfg Config, logger *zerolog.Logger, tick int) error {
	if cfg.OnTick == nil {
		return nil
	}

	defer RecoverPanic(logger, cfg.Name)

	logger.Debug().Str(logFieldWorker, cfg.Name).Int(logFieldTick, tick).Msg("worker tick")

	tickErr := cfg.OnTick(ctx)
	if tickErr == nil {
		return nil
	}

	if cfg.OnError != nil {
		if !cfg.OnError(tickErr) {
			return fmt.Errorf("worker loop %s: %w", cfg.Name, tickErr)
		}

		return nil
	}

	logger.Error().Err(tickErr).Str(logFieldWorker, cfg.Name).Msg("tick error")

	return nil
}

func checkCanceled(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("worker loop %s: %w", name, ctx.Err())
	default:
		return nil
	}
}

// RecoverPanic recovers from panics and logs them.
// Use as: defer worker.RecoverPanic(logger, "operation name")
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")
	}
}

func getLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()

		return &nop
	}

	return logger
}
