package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/ege-dashboard/internal/core/domain"
	apperrors "github.com/lueurxax/ege-dashboard/internal/core/errors"
	"github.com/lueurxax/ege-dashboard/internal/platform/observability"
	"github.com/lueurxax/ege-dashboard/internal/platform/worker"
)

// Log field constants.
const (
	logFieldPath    = "path"
	logFieldRecords = "records"
	logFieldSize    = "size"
	watcherName     = "dataset-watcher"
)

// Dataset is one parsed snapshot of the source file. It is never mutated after load.
type Dataset struct {
	Path     string
	Records  []domain.Record
	ModTime  time.Time
	Size     int64
	LoadedAt time.Time
}

// Incomplete counts records missing a subject or a type.
func (d *Dataset) Incomplete() int {
	n := 0

	for _, r := range d.Records {
		if !r.Complete() {
			n++
		}
	}

	return n
}

// stamp identifies a version of the file on disk.
type stamp struct {
	modTime time.Time
	size    int64
}

func (s stamp) same(other stamp) bool {
	return s.size == other.size && s.modTime.Equal(other.modTime)
}

// Loader reads the dataset file and caches the result until the file's
// modification time or size changes, or the cache is invalidated.
type Loader struct {
	path     string
	encoding string
	logger   *zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cached *Dataset
	stamp  stamp
}

// NewLoader creates a loader for the file at path. A nil logger discards output.
func NewLoader(path, encoding string, logger *zerolog.Logger) *Loader {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Loader{
		path:     path,
		encoding: encoding,
		logger:   logger,
		now:      time.Now,
	}
}

// Load returns the cached dataset when the file is unchanged, otherwise reads it again.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	ds, _, err := l.load(ctx, false)

	return ds, err
}

// Refresh re-checks the file and reloads it when it changed.
// It reports whether a new snapshot was parsed.
func (l *Loader) Refresh(ctx context.Context) (bool, error) {
	_, reloaded, err := l.load(ctx, false)

	return reloaded, err
}

// Reload reads the file regardless of the cache state.
func (l *Loader) Reload(ctx context.Context) (*Dataset, error) {
	ds, _, err := l.load(ctx, true)

	return ds, err
}

// Invalidate drops the cached snapshot; the next Load reads the file.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cached = nil
	l.stamp = stamp{}
}

// Snapshot returns the cached dataset without touching the file, or nil.
func (l *Loader) Snapshot() *Dataset {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cached
}

// Ready reports whether the dataset can be loaded.
func (l *Loader) Ready(ctx context.Context) error {
	_, err := l.Load(ctx)

	return err
}

// Watch loads the file right away, then polls it every interval and reloads
// it on change until ctx is canceled. A non-positive interval only performs the
// initial load. onLoad, when set, receives every newly parsed snapshot.
// Failures are logged and the previous snapshot stays in place.
func (l *Loader) Watch(ctx context.Context, interval time.Duration, onLoad func(*Dataset)) error {
	return worker.Loop(ctx, worker.Config{
		Name:       watcherName,
		Interval:   interval,
		RunOnStart: true,
		OnTick: func(ctx context.Context) error {
			reloaded, err := l.Refresh(ctx)
			if err != nil {
				return err
			}

			if reloaded {
				l.logger.Info().Str(logFieldPath, l.path).Msg("dataset read from disk")

				if onLoad != nil {
					onLoad(l.Snapshot())
				}
			}

			return nil
		},
		OnError: func(err error) bool {
			l.logger.Warn().Err(err).Str(logFieldPath, l.path).Msg("dataset refresh failed")

			return true
		},
		Logger: l.logger,
	})
}

func (l *Loader) load(ctx context.Context, force bool) (*Dataset, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("load dataset: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.statFile()
	if err != nil {
		return nil, false, err
	}

	if !force && l.cached != nil && current.same(l.stamp) {
		observability.DatasetCacheLookups.WithLabelValues(observability.CacheHit).Inc()

		return l.cached, false, nil
	}

	observability.DatasetCacheLookups.WithLabelValues(observability.CacheMiss).Inc()

	ds, err := l.readFile(current)
	if err != nil {
		observability.DatasetLoads.WithLabelValues(observability.LoadResultError).Inc()

		return nil, false, err
	}

	observability.DatasetLoads.WithLabelValues(observability.LoadResultOK).Inc()
	observability.DatasetRecords.Set(float64(len(ds.Records)))
	observability.DatasetIncompleteRecords.Set(float64(ds.Incomplete()))
	observability.DatasetLastLoadTimestamp.Set(float64(ds.LoadedAt.Unix()))

	l.cached = ds
	l.stamp = current

	l.logger.Debug().
		Str(logFieldPath, l.path).
		Int(logFieldRecords, len(ds.Records)).
		Int64(logFieldSize, ds.Size).
		Msg("dataset loaded")

	return ds, true, nil
}

func (l *Loader) statFile() (stamp, error) {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return stamp{}, fmt.Errorf("%w: %s", apperrors.ErrDatasetNotFound, l.path)
	}

	if err != nil {
		return stamp{}, fmt.Errorf("%w: %w", apperrors.ErrDatasetUnreadable, err)
	}

	if info.IsDir() {
		return stamp{}, fmt.Errorf("%w: %s is a directory", apperrors.ErrDatasetUnreadable, l.path)
	}

	return stamp{modTime: info.ModTime(), size: info.Size()}, nil
}

func (l *Loader) readFile(st stamp) (*Dataset, error) {
	start := l.now()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDatasetNotFound, l.path)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDatasetUnreadable, err)
	}

	defer f.Close()

	records, err := Decode(f, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.path, err)
	}

	loadedAt := l.now()
	observability.DatasetLoadDuration.Observe(loadedAt.Sub(start).Seconds())

	return &Dataset{
		Path:     l.path,
		Records:  records,
		ModTime:  st.modTime,
		Size:     st.size,
		LoadedAt: loadedAt,
	}, nil
}
