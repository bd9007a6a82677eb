// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires the dataset loader, its file watcher, the chart renderer
// and the dashboard handler, and exposes the operational modes:
//
//   - Serve mode: HTTP dashboard with health, readiness and metrics endpoints
//   - Check mode: load the dataset once, log a summary and exit
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lueurxax/ege-dashboard/internal/analytics"
	"github.com/lueurxax/ege-dashboard/internal/charts"
	"github.com/lueurxax/ege-dashboard/internal/dashboard"
	"github.com/lueurxax/ege-dashboard/internal/dataset"
	"github.com/lueurxax/ege-dashboard/internal/platform/config"
	"github.com/lueurxax/ege-dashboard/internal/platform/observability"
)

const (
	logFieldPath     = "path"
	logFieldRecords  = "records"
	logFieldDropped  = "dropped"
	logFieldSubjects = "subjects"
	logFieldInterval = "interval"
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg    *config.Config
	loader *dataset.Loader
	logger *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		loader: dataset.NewLoader(cfg.DatasetPath, cfg.DatasetEncoding, logger),
		logger: logger,
	}
}

// Loader exposes the dataset loader.
func (a *App) Loader() *dataset.Loader {
	return a.loader
}

// Handler builds the dashboard HTTP handler.
func (a *App) Handler() (*dashboard.Handler, error) {
	chartRenderer, err := charts.NewRenderer(charts.Options{YFloor: a.cfg.ChartYFloor})
	if err != nil {
		return nil, fmt.Errorf("chart renderer init: %w", err)
	}

	handler, err := dashboard.NewHandler(a.cfg, a.loader, chartRenderer, a.logger)
	if err != nil {
		return nil, fmt.Errorf("dashboard handler init: %w", err)
	}

	return handler, nil
}

// RunServe starts the dataset watcher, which performs the initial load, and
// serves the dashboard until ctx is canceled. A dataset that fails to load does
// not stop the server; the error is shown on the page and reported by /readyz.
func (a *App) RunServe(ctx context.Context) error {
	if a.cfg.DatasetWatchInterval > 0 {
		a.logger.Info().Dur(logFieldInterval, a.cfg.DatasetWatchInterval).Msg("Dataset watcher enabled")
	}

	go func() {
		if err := a.loader.Watch(ctx, a.cfg.DatasetWatchInterval, a.logSummary); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("dataset watcher stopped")
		}
	}()

	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := observability.NewServer(a.cfg.HTTPPort, handler, a.loader, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("dashboard server start: %w", err)
	}

	return nil
}

// RunCheck loads the dataset once and logs what the dashboard would show.
func (a *App) RunCheck(ctx context.Context) error {
	ds, err := a.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("dataset check: %w", err)
	}

	a.logSummary(ds)

	agg := analytics.Compute(ds.Records, analytics.Subjects(ds.Records))
	for _, total := range agg.Totals {
		a.logger.Info().Str("subject", total.Subject).Str("label", total.Label).Int("count", total.Count).Msg("Subject total")
	}

	return nil
}

func (a *App) logSummary(ds *dataset.Dataset) {
	a.logger.Info().
		Str(logFieldPath, ds.Path).
		Int(logFieldRecords, len(ds.Records)).
		Int(logFieldDropped, ds.Incomplete()).
		Strs(logFieldSubjects, analytics.Subjects(ds.Records)).
		Msg("Dataset loaded")
}
