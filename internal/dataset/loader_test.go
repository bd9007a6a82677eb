package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/ege-dashboard/internal/core/errors"
)

const (
	testHeader   = "subject,type,comment\n"
	testRowsTwo  = testHeader + "math,открытый ответ,http://x\nbio,соответствие,\n"
	testRowsOne  = testHeader + "math,открытый ответ,http://x\n"
	testFileName = "questions.csv"
)

func writeDataset(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func newTestLoader(t *testing.T, content string) (*Loader, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), testFileName)
	writeDataset(t, path, content, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	return NewLoader(path, testEncodingUTF8, nil), path
}

func TestLoader_LoadCaches(t *testing.T) {
	loader, _ := newTestLoader(t, testRowsTwo)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first.Records, 2)

	second, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, loader.Snapshot())
}

func TestLoader_ReloadsOnChange(t *testing.T) {
	loader, path := newTestLoader(t, testRowsTwo)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)

	writeDataset(t, path, testRowsOne, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC))

	reloaded, err := loader.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded)

	second, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, second.Records, 1)

	reloaded, err = loader.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, reloaded)
}

func TestLoader_Invalidate(t *testing.T) {
	loader, _ := newTestLoader(t, testRowsTwo)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)

	loader.Invalidate()
	assert.Nil(t, loader.Snapshot())

	second, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Records, second.Records)
}

func TestLoader_Reload(t *testing.T) {
	loader, _ := newTestLoader(t, testRowsTwo)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)

	second, err := loader.Reload(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestLoader_MissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.csv"), testEncodingUTF8, nil)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDatasetNotFound))
	assert.Error(t, loader.Ready(context.Background()))
}

func TestLoader_ParseErrorKeepsPreviousSnapshot(t *testing.T) {
	loader, path := newTestLoader(t, testRowsTwo)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)

	writeDataset(t, path, "subject,type\nmath,x\n", time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC))

	_, err = loader.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
	assert.Same(t, first, loader.Snapshot())
}

func TestLoader_CanceledContext(t *testing.T) {
	loader, _ := newTestLoader(t, testRowsTwo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoader_WatchPicksUpChanges(t *testing.T) {
	loader, path := newTestLoader(t, testRowsTwo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded := make(chan int, 4)
	done := make(chan error, 1)

	go func() {
		done <- loader.Watch(ctx, 5*time.Millisecond, func(ds *Dataset) {
			loaded <- len(ds.Records)
		})
	}()

	select {
	case n := <-loaded:
		assert.Equal(t, 2, n)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not perform the initial load")
	}

	writeDataset(t, path, testRowsOne, time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC))

	select {
	case n := <-loaded:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not pick up the change")
	}

	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestLoader_WatchWithoutIntervalLoadsOnce(t *testing.T) {
	loader, _ := newTestLoader(t, testRowsTwo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- loader.Watch(ctx, 0, nil)
	}()

	require.Eventually(t, func() bool {
		return loader.Snapshot() != nil
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestLoader_WatchSurvivesMissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), testFileName), testEncodingUTF8, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := loader.Watch(ctx, 5*time.Millisecond, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Nil(t, loader.Snapshot())
}

func TestDataset_Incomplete(t *testing.T) {
	loader, _ := newTestLoader(t, testHeader+"math,x,\n,y,\nbio,,\n")

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Incomplete())
}
