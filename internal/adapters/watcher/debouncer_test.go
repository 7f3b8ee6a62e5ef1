package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/watcher"
)

// recorder collects debouncer batches.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

func TestDebouncer_Add(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "single path",
			paths: []string{"/src/main.c"},
			want:  []string{"/src/main.c"},
		},
		{
			name:  "paths are coalesced and sorted",
			paths: []string{"/src/b.c", "/src/c.c", "/src/a.c"},
			want:  []string{"/src/a.c", "/src/b.c", "/src/c.c"},
		},
		{
			name:  "duplicates are dropped",
			paths: []string{"/graph.json", "/graph.json", "/graph.json"},
			want:  []string{"/graph.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				var rec recorder
				d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

				for _, p := range tt.paths {
					d.Add(p)
				}

				time.Sleep(150 * time.Millisecond)
				synctest.Wait()

				require.Len(t, rec.get(), 1)
				assert.Equal(t, tt.want, rec.get()[0])
			})
		})
	}
}

func TestDebouncer_Add_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/src/a.c")
		time.Sleep(50 * time.Millisecond)
		d.Add("/src/b.c")
		time.Sleep(50 * time.Millisecond)

		// 100ms after the first Add the window was restarted by the second.
		synctest.Wait()
		assert.Empty(t, rec.get())

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		require.Equal(t, [][]string{{"/src/a.c", "/src/b.c"}}, rec.get())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Flush()
		assert.Empty(t, rec.get(), "nothing pending")

		d.Add("/src/b.c")
		d.Add("/src/a.c")
		d.Flush()
		require.Equal(t, [][]string{{"/src/a.c", "/src/b.c"}}, rec.get(), "flush is synchronous")

		// The stopped timer must not deliver the batch again.
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, rec.get(), 1)

		d.Add("/src/c.c")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, [][]string{{"/src/a.c", "/src/b.c"}, {"/src/c.c"}}, rec.get())
	})
}

func TestDebouncer_Flush_AfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(50*time.Millisecond, rec.record)

		d.Add("/src/a.c")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		require.Len(t, rec.get(), 1)

		d.Flush()
		assert.Len(t, rec.get(), 1)
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(50*time.Millisecond, rec.record)

		d.Add("/src/a.c")
		d.Stop()
		d.Add("/src/b.c")

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()
		assert.Empty(t, rec.get())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		d.Add("/src/a.c")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add("/src/b.c")
		d.Flush()
	})
}
