package runner_test

import (
	"context"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.trai.ch/noderun/internal/engine/runner"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	ctrl *gomock.Controller

	cfg       *domain.Config
	graph     *domain.Graph
	exec      *mocks.MockExecutor
	cache     *mocks.MockCache
	dist      *mocks.MockDistCache
	buildTime *mocks.MockBuildTimeCache
	fuse      *mocks.MockFuseManager
	fs        *mocks.MockFileSystem
	host      *mocks.MockTaskHost
	display   *mocks.MockDisplay
	metrics   *mocks.MockMetrics
	ledger    *domain.RunLedger

	sourceRoot string
	rootDir    string
	root       *mocks.MockBuildRoot
}

// newFixture creates a build with permissive defaults for logging, tracing, metrics and display.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := domain.DefaultConfig(t.TempDir())
	cfg.Threads = 4
	cfg.TestThreads = 2

	f := &fixture{
		ctrl:       ctrl,
		cfg:        &cfg,
		graph:      domain.NewGraph(),
		exec:       mocks.NewMockExecutor(ctrl),
		cache:      mocks.NewMockCache(ctrl),
		fuse:       mocks.NewMockFuseManager(ctrl),
		fs:         mocks.NewMockFileSystem(ctrl),
		host:       mocks.NewMockTaskHost(ctrl),
		display:    mocks.NewMockDisplay(ctrl),
		metrics:    mocks.NewMockMetrics(ctrl),
		ledger:     domain.NewRunLedger(),
		sourceRoot: cfg.Roots.Source,
		rootDir:    filepath.Join(t.TempDir(), "root"),
	}

	f.display.EXPECT().Emit(gomock.Any()).AnyTimes()
	f.display.EXPECT().Partial(gomock.Any()).AnyTimes()
	f.metrics.EXPECT().NodeFinished(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	f.metrics.EXPECT().CacheLookup(gomock.Any(), gomock.Any()).AnyTimes()

	f.fuse.EXPECT().Manage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Node, _ *domain.Patterns, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
	f.fs.EXPECT().RemoveTree(gomock.Any()).Return(nil).AnyTimes()

	f.root = f.newRoot()
	return f
}

func (f *fixture) newRoot() *mocks.MockBuildRoot {
	root := mocks.NewMockBuildRoot(f.ctrl)
	root.EXPECT().Path().Return(f.rootDir).AnyTimes()
	return root
}

func (f *fixture) build() *runner.Build {
	logger := mocks.NewMockLogger(f.ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	span := mocks.NewMockSpan(f.ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(f.ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	b := &runner.Build{
		Config:   f.cfg,
		Graph:    f.graph,
		Patterns: domain.NewPatterns(f.cfg.Roots.Macros()),
		Executor: f.exec,
		Cache:    f.cache,
		Fuse:     f.fuse,
		FS:       f.fs,
		Host:     f.host,
		Ledger:   f.ledger,
		Display:  f.display,
		Logger:   logger,
		Tracer:   tracer,
		Metrics:  f.metrics,
		Now:      fixedClock(),
		Environ:  func() []string { return []string{"PATH=/usr/bin", "HOME=/home/builder"} },
	}
	if f.dist != nil {
		b.DistCache = f.dist
	}
	if f.buildTime != nil {
		b.BuildTime = f.buildTime
	}
	return b
}

func (f *fixture) withDist() *mocks.MockDistCache {
	f.dist = mocks.NewMockDistCache(f.ctrl)
	return f.dist
}

func (f *fixture) withBuildTime() *mocks.MockBuildTimeCache {
	f.buildTime = mocks.NewMockBuildTimeCache(f.ctrl)
	return f.buildTime
}

func (f *fixture) addNode(t *testing.T, n *domain.Node) *domain.Node {
	t.Helper()
	if err := f.graph.AddNode(n); err != nil {
		t.Fatal(err)
	}
	return n
}

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// fixedClock advances one second per call.
func fixedClock() func() time.Time {
	now := testTime
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

// producer is a finished dependency.
type producer struct {
	uid    string
	root   ports.BuildRoot
	result domain.NodeResult
}

func (p producer) UID() string                { return p.uid }
func (p producer) BuildRoot() ports.BuildRoot { return p.root }
func (p producer) Result() domain.NodeResult  { return p.result }

func files(paths ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range paths {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func compileNode(uid string) *domain.Node {
	return &domain.Node{
		UID:     uid,
		KV:      map[string]string{"p": "CC"},
		Outputs: []string{"$(BUILD_ROOT)/obj/" + uid + ".o"},
		Commands: []domain.Command{{
			Args: []string{"cc", "-c", "$(SOURCE_ROOT)/" + uid + ".c", "-o", "$(BUILD_ROOT)/obj/" + uid + ".o"},
			Env:  map[string]string{"LANG": "C"},
		}},
	}
}
