package scheduler_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func runCommand(tool string, res domain.ExecResult) func(context.Context, domain.ExecRequest, ports.ProgressSink) (domain.ExecResult, error) {
	return func(_ context.Context, req domain.ExecRequest, _ ports.ProgressSink) (domain.ExecResult, error) {
		if req.Args[0] != tool {
			return domain.ExecResult{}, errors.New("unexpected command " + req.Args[0])
		}
		return res, nil
	}
}

func TestScheduler_CompileThenLink(t *testing.T) {
	f := newFixture(t)
	g := graphOf(t, uncached(compileNode("a")), uncached(linkNode("app", "a")))

	gomock.InOrder(
		f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(runCommand("cc", domain.ExecResult{})),
		f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(runCommand("ld", domain.ExecResult{})),
	)
	var finished []string
	f.display.EXPECT().NodeFinished(gomock.Any(), gomock.Any()).Do(func(n *domain.Node, _ domain.NodeResult) {
		finished = append(finished, n.UID)
	}).Times(2)

	report, err := f.scheduler(t).Run(t.Context(), f.request(g))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "app"}, finished)
	assert.Empty(t, report.Failed())
	assert.Equal(t, domain.StateDone, report.Results["a"].State)
	assert.Equal(t, domain.StateDone, report.Results["app"].State)
	assert.Equal(t, map[string]int{"a": 0, "app": 0}, report.Ledger.ExitCodes())

	require.Len(t, f.roots.roots, 2)
	assert.Equal(t, []string{f.roots.roots[1].path}, f.roots.roots[0].stolenBy)
	assert.True(t, f.roots.cleaned)
}

func TestScheduler_FailedDependencyBreaksDependents(t *testing.T) {
	f := newFixture(t)
	f.cfg.KeepGoing = true
	g := graphOf(t, uncached(compileNode("a")), uncached(linkNode("app", "a")))

	f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(runCommand("cc", domain.ExecResult{ExitCode: 1, Stderr: "a.c: syntax error\n"}))
	f.display.EXPECT().NodeFinished(gomock.Any(), gomock.Any()).Times(2)

	report, err := f.scheduler(t).Run(t.Context(), f.request(g))
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)

	assert.Equal(t, []string{"a", "app"}, report.Failed())
	assert.Equal(t, domain.StateBrokenByDeps, report.Results["app"].State)
	assert.Equal(t, "can not build one or more deps: a", report.Results["app"].Stderr)
	assert.Contains(t, report.Results["app"].Tags, domain.TagBrokenByDeps)

	errs := report.Ledger.BuildErrors()
	assert.Contains(t, errs, "a")
	assert.NotContains(t, errs, "app")
}

func TestScheduler_FastFailStopsTheBuild(t *testing.T) {
	f := newFixture(t)
	g := graphOf(t, uncached(compileNode("a")), uncached(linkNode("app", "a")))

	f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(runCommand("cc", domain.ExecResult{ExitCode: 1})).Times(1)
	f.display.EXPECT().NodeFinished(gomock.Any(), gomock.Any()).Times(1)

	report, err := f.scheduler(t).Run(t.Context(), f.request(g))
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)

	assert.Equal(t, []string{"a"}, report.Failed())
	assert.NotContains(t, report.Results, "app")
	assert.True(t, f.roots.cleaned)
}

func TestScheduler_SecondRunRestoresFromCache(t *testing.T) {
	f := newFixture(t)
	app := linkNode("app", "a")
	g := graphOf(t, compileNode("a"), app)
	s := f.scheduler(t)

	f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ExecResult{}, nil).Times(2)
	f.display.EXPECT().NodeFinished(gomock.Any(), gomock.Any()).Times(4)

	first, err := s.Run(t.Context(), f.request(g))
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, first.Results["a"].State)
	assert.Equal(t, domain.StateDone, first.Results["app"].State)

	has, err := f.cache.Has(t.Context(), "app")
	require.NoError(t, err)
	require.True(t, has)

	second, err := s.Run(t.Context(), f.request(g))
	require.NoError(t, err)
	assert.Equal(t, domain.StateCacheHit, second.Results["a"].State)
	assert.Equal(t, domain.StateCacheHit, second.Results["app"].State)
	assert.Equal(t, "get from local cache", second.Ledger.ExecutionLog()["FromCache("+app.String()+")"].Type)
}

func TestScheduler_CachedNodeDoesNotWaitForDependencies(t *testing.T) {
	f := newFixture(t)
	g := graphOf(t, compileNode("a"), linkNode("app", "a"))
	require.NoError(t, f.cache.Put(t.Context(), "app", "", nil))

	f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(runCommand("cc", domain.ExecResult{})).Times(1)
	f.display.EXPECT().NodeFinished(gomock.Any(), gomock.Any()).Times(2)

	report, err := f.scheduler(t).Run(t.Context(), f.request(g))
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, report.Results["a"].State)
	assert.Equal(t, domain.StateCacheHit, report.Results["app"].State)
}

func TestScheduler_Cancellation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		g := graphOf(t, uncached(compileNode("a")))

		f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ domain.ExecRequest, _ ports.ProgressSink) (domain.ExecResult, error) {
				<-ctx.Done()
				return domain.ExecResult{}, domain.ErrCancelled
			})

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			_, err := f.scheduler(t).Run(ctx, f.request(g))
			done <- err
		}()

		synctest.Wait()
		cancel()

		require.ErrorIs(t, <-done, domain.ErrCancelled)
		assert.True(t, f.roots.cleaned)
	})
}

func TestScheduler_NodeFunctionErrorIsFatal(t *testing.T) {
	f := newFixture(t)
	node := uncached(&domain.Node{
		UID: "gen",
		KV:  map[string]string{"p": "PY"},
		Func: func(context.Context, *domain.Patterns) error {
			return errors.New("assignment to entry in nil map")
		},
	})
	g := graphOf(t, node, uncached(linkNode("app", "gen")))

	_, err := f.scheduler(t).Run(t.Context(), f.request(g))
	require.ErrorContains(t, err, domain.ErrNodeFunctionFailed.Error())
	assert.NotErrorIs(t, err, domain.ErrBuildExecutionFailed)
}

func TestScheduler_TargetsAndOutputDir(t *testing.T) {
	f := newFixture(t)
	f.cfg.OutputDir = t.TempDir()
	g := graphOf(t, uncached(compileNode("a")), uncached(compileNode("b")), uncached(linkNode("app", "a", "b")))

	f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(runCommand("cc", domain.ExecResult{}))
	f.display.EXPECT().NodeFinished(gomock.Any(), gomock.Any())

	var linked [2]string
	f.fs.EXPECT().HardlinkTree(gomock.Any(), gomock.Any()).DoAndReturn(func(src, dst string) error {
		linked = [2]string{src, dst}
		return nil
	})

	report, err := f.scheduler(t).Run(t.Context(), f.request(g, "a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, report.Targets)
	assert.Len(t, report.Results, 1)
	require.Len(t, f.roots.roots, 1)
	assert.Equal(t, [2]string{
		filepath.Join(f.roots.roots[0].path, "obj", "a.o"),
		filepath.Join(f.cfg.OutputDir, "obj", "a.o"),
	}, linked)
}

func TestScheduler_KeepTempsKeepsRoots(t *testing.T) {
	f := newFixture(t)
	f.cfg.KeepTemps = true
	g := graphOf(t, uncached(compileNode("a")))

	f.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ExecResult{}, nil)
	f.display.EXPECT().NodeFinished(gomock.Any(), gomock.Any())

	_, err := f.scheduler(t).Run(t.Context(), f.request(g))
	require.NoError(t, err)
	assert.True(t, f.roots.closed)
	assert.False(t, f.roots.cleaned)
}

func TestScheduler_InvalidGraph(t *testing.T) {
	f := newFixture(t)
	g := graphOf(t, uncached(linkNode("app", "missing")))

	_, err := f.scheduler(t).Run(t.Context(), f.request(g))
	require.ErrorContains(t, err, domain.ErrMissingDependency.Error())

	_, err = f.scheduler(t).Run(t.Context(), f.request(graphOf(t, uncached(compileNode("a"))), "nope"))
	require.ErrorContains(t, err, domain.ErrNodeNotFound.Error())
}

func TestReport_Failed(t *testing.T) {
	r := &scheduler.Report{Results: map[string]domain.NodeResult{
		"c": {ExitCode: 1},
		"a": {ExitCode: 3},
		"b": {},
	}}
	assert.Equal(t, []string{"a", "c"}, r.Failed())
}
