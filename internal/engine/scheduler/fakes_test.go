package scheduler_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.trai.ch/noderun/internal/engine/runner"
	"go.trai.ch/noderun/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

// memCache is an in-memory local cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]string)}
}

func (c *memCache) TryRestore(_ context.Context, uid, _ string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[uid]
	return ok, nil
}

func (c *memCache) Put(_ context.Context, uid, _ string, files []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uid] = files
	return nil
}

func (c *memCache) Has(_ context.Context, uid string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[uid]
	return ok, nil
}

func (c *memCache) ClearUID(_ context.Context, uid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, uid)
	return nil
}

func (c *memCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

// rootSet hands out fakeRoots under dir.
type rootSet struct {
	dir string

	mu      sync.Mutex
	roots   []*fakeRoot
	cleaned bool
	closed  bool
}

func (s *rootSet) New(outputs []string, refcount int, _ []string, _ bool) ports.BuildRoot {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &fakeRoot{
		path:     filepath.Join(s.dir, fmt.Sprint(len(s.roots))),
		outputs:  outputs,
		refcount: refcount,
	}
	s.roots = append(s.roots, r)
	return r
}

func (s *rootSet) Cleanup(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaned = true
	return nil
}

func (s *rootSet) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// fakeRoot is a build root whose outputs are never checked on disk.
type fakeRoot struct {
	path    string
	outputs []string

	mu        sync.Mutex
	refcount  int
	validated bool
	stolenBy  []string
}

func (r *fakeRoot) Path() string { return r.path }

func (r *fakeRoot) Create() error { return os.MkdirAll(r.path, 0o755) }

func (r *fakeRoot) OK() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validated
}

func (r *fakeRoot) Steal(into string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stolenBy = append(r.stolenBy, into)
	r.refcount--
	return nil
}

func (r *fakeRoot) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validated = true
	return nil
}

func (r *fakeRoot) ReadOutputDigests(bool) (*domain.OutputDigests, error) {
	return &domain.OutputDigests{OutputsUID: "digest:" + r.path}, nil
}

func (r *fakeRoot) ValidateDirOutputs() error  { return nil }
func (r *fakeRoot) ExtractDirOutputs() error   { return nil }
func (r *fakeRoot) PropagateDirOutputs() error { return nil }
func (r *fakeRoot) AddOutput(string)           {}

func (r *fakeRoot) Outputs() []string {
	out := make([]string, len(r.outputs))
	for i, o := range r.outputs {
		out[i] = strings.ReplaceAll(o, domain.Macro(domain.BuildRoot), r.path)
	}
	return out
}

func (r *fakeRoot) DirOutputFiles() ([]string, error) { return nil, nil }

func (r *fakeRoot) Inc() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refcount++
	return nil
}

func (r *fakeRoot) Dec() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refcount--
	return nil
}

type fixture struct {
	cfg     *domain.Config
	exec    *mocks.MockExecutor
	fs      *mocks.MockFileSystem
	display *mocks.MockDisplay
	cache   *memCache
	roots   *rootSet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := domain.DefaultConfig(t.TempDir())
	cfg.Threads = 2
	cfg.TestThreads = 1

	f := &fixture{
		cfg:     &cfg,
		exec:    mocks.NewMockExecutor(ctrl),
		fs:      mocks.NewMockFileSystem(ctrl),
		display: mocks.NewMockDisplay(ctrl),
		cache:   newMemCache(),
		roots:   &rootSet{dir: t.TempDir()},
	}
	f.display.EXPECT().Emit(gomock.Any()).AnyTimes()
	f.display.EXPECT().Partial(gomock.Any()).AnyTimes()
	f.fs.EXPECT().RemoveTree(gomock.Any()).Return(nil).AnyTimes()
	return f
}

func (f *fixture) scheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	ctrl := gomock.NewController(t)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().NodeFinished(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().CacheLookup(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().PoolUsage(gomock.Any()).AnyTimes()

	fuse := mocks.NewMockFuseManager(ctrl)
	fuse.EXPECT().Manage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Node, _ *domain.Patterns, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()

	return scheduler.NewScheduler(runner.Build{
		Config:   f.cfg,
		Executor: f.exec,
		Cache:    f.cache,
		Fuse:     fuse,
		FS:       f.fs,
		Display:  f.display,
		Logger:   logger,
		Tracer:   tracer,
		Metrics:  metrics,
		Environ:  func() []string { return []string{"PATH=/usr/bin"} },
	})
}

func (f *fixture) request(g *domain.Graph, targets ...string) scheduler.Request {
	return scheduler.Request{
		Graph:    g,
		Patterns: domain.NewPatterns(f.cfg.Roots.Macros()),
		Roots:    f.roots,
		Targets:  targets,
	}
}

func compileNode(uid string) *domain.Node {
	return &domain.Node{
		UID:     uid,
		KV:      map[string]string{"p": "CC"},
		Outputs: []string{"$(BUILD_ROOT)/obj/" + uid + ".o"},
		Commands: []domain.Command{{
			Args: []string{"cc", "-c", "$(SOURCE_ROOT)/" + uid + ".c", "-o", "$(BUILD_ROOT)/obj/" + uid + ".o"},
		}},
	}
}

func linkNode(uid string, deps ...string) *domain.Node {
	args := []string{"ld", "-o", "$(BUILD_ROOT)/bin/" + uid}
	for _, d := range deps {
		args = append(args, "$(BUILD_ROOT)/obj/"+d+".o")
	}
	return &domain.Node{
		UID:      uid,
		KV:       map[string]string{"p": "LD"},
		Outputs:  []string{"$(BUILD_ROOT)/bin/" + uid},
		Deps:     deps,
		Commands: []domain.Command{{Args: args}},
	}
}

func uncached(n *domain.Node) *domain.Node {
	off := false
	n.Cache = &off
	return n
}

func graphOf(t *testing.T, nodes ...*domain.Node) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	return g
}
