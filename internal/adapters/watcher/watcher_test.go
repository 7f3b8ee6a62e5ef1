package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/watcher"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func startWatcher(t *testing.T, roots ...string) (*watcher.Watcher, context.CancelFunc) {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, w.Start(ctx, roots...))
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w, cancel
}

// nextEvent waits for an event on path.
func nextEvent(t *testing.T, w *watcher.Watcher, path string) ports.WatchEvent {
	t.Helper()
	found := make(chan ports.WatchEvent, 1)
	go func() {
		for ev := range w.Events() {
			if ev.Path == path {
				found <- ev
				return
			}
		}
	}()

	select {
	case ev := <-found:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", path)
		return ports.WatchEvent{}
	}
}

func TestWatcher_Events(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, _ := startWatcher(t, root)

	path := filepath.Join(root, "main.c")
	require.NoError(t, os.WriteFile(path, []byte("int main;"), 0o644))

	ev := nextEvent(t, w, path)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, _ := startWatcher(t, root)

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	nextEvent(t, w, dir)

	path := filepath.Join(dir, "lib.c")
	require.Eventually(t, func() bool {
		return os.WriteFile(path, []byte("x"), 0o644) == nil
	}, time.Second, 10*time.Millisecond)
	nextEvent(t, w, path)
}

func TestWatcher_SkipsStateDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	state := filepath.Join(root, domain.StateDirName)
	require.NoError(t, os.Mkdir(state, 0o755))
	w, _ := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(state, "ignored"), []byte("x"), 0o644))
	marker := filepath.Join(root, "marker")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	seen := make(chan string, 16)
	go func() {
		for ev := range w.Events() {
			seen <- ev.Path
		}
	}()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case p := <-seen:
			require.NotEqual(t, filepath.Join(state, "ignored"), p)
			if p == marker {
				return
			}
		case <-timeout:
			t.Fatal("marker event not received")
		}
	}
}

func TestWatcher_StopsWithContext(t *testing.T) {
	t.Parallel()

	w, cancel := startWatcher(t, t.TempDir())
	cancel()

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event stream did not end")
	}
}
