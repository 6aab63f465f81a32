package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.ipynb"), func(context.Context, string) {})
	require.Error(t, err)
}

func TestDebouncedRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "project.ipynb")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	runs := make(chan string, 10)
	w, err := New(path, func(_ context.Context, p string) { runs <- p })
	require.NoError(t, err)
	w.SetDebounce(100 * time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// A burst of writes, plus noise from a sibling file.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{\"n\": 1}"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case got := <-runs:
		assert.Equal(t, w.Path(), got)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	// The burst produced a single run.
	select {
	case <-runs:
		t.Fatal("burst triggered more than one run")
	case <-time.After(300 * time.Millisecond):
	}

	stats := w.GetStats()
	assert.Equal(t, 1, stats.Runs)
	assert.GreaterOrEqual(t, stats.Events, 1)
}

func TestStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "project.ipynb")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := New(path, func(context.Context, string) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	default:
		t.Fatal("event loop still running")
	}
}

func TestContextCancelStopsLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.ipynb")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := New(path, func(context.Context, string) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit")
	}
	w.Stop()
}
