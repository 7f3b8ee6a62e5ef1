package runner_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/engine/runner"
	"go.uber.org/mock/gomock"
)

func TestWriteThroughCachesTask(t *testing.T) {
	t.Run("no dist cache", func(t *testing.T) {
		f := newFixture(t)
		node := compileNode("a")

		f.host.EXPECT().Enqueue(gomock.AssignableToTypeOf(&runner.PutInCacheTask{}), false)
		f.root.EXPECT().Dec().Return(nil)

		task := runner.NewWriteThroughCachesTask(f.build(), node, f.root)
		require.NoError(t, task.Run(t.Context()))
		assert.Equal(t, "write_through_caches[CC]", task.ShortName())
		assert.True(t, task.Res().IsZero())
	})

	t.Run("writable dist cache", func(t *testing.T) {
		f := newFixture(t)
		dist := f.withDist()
		node := compileNode("a")

		f.root.EXPECT().Outputs().Return([]string{f.rootDir + "/obj/a.o"})
		dist.EXPECT().Readonly().Return(false).AnyTimes()
		dist.EXPECT().Fits([]string{f.rootDir + "/obj/a.o"}).Return(true)
		dist.EXPECT().Has(gomock.Any(), "a").Return(false, nil)
		gomock.InOrder(
			f.host.EXPECT().Enqueue(gomock.AssignableToTypeOf(&runner.PutInCacheTask{}), false),
			f.host.EXPECT().Enqueue(gomock.AssignableToTypeOf(&runner.PutInDistCacheTask{}), false),
		)

		require.NoError(t, runner.NewWriteThroughCachesTask(f.build(), node, f.root).Run(t.Context()))
	})

	t.Run("dist only when write through is off", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.StoreWriteThrough = false
		dist := f.withDist()
		node := compileNode("a")

		f.root.EXPECT().Outputs().Return(nil)
		dist.EXPECT().Readonly().Return(false).AnyTimes()
		dist.EXPECT().Fits(gomock.Any()).Return(true)
		dist.EXPECT().Has(gomock.Any(), "a").Return(false, nil)
		f.root.EXPECT().Dec().Return(nil)
		f.host.EXPECT().Enqueue(gomock.AssignableToTypeOf(&runner.PutInDistCacheTask{}), false)

		require.NoError(t, runner.NewWriteThroughCachesTask(f.build(), node, f.root).Run(t.Context()))
	})

	t.Run("already in dist cache", func(t *testing.T) {
		f := newFixture(t)
		dist := f.withDist()
		node := compileNode("a")

		f.root.EXPECT().Outputs().Return(nil)
		dist.EXPECT().Readonly().Return(false).AnyTimes()
		dist.EXPECT().Fits(gomock.Any()).Return(true)
		dist.EXPECT().Has(gomock.Any(), "a").Return(true, nil)
		f.host.EXPECT().Enqueue(gomock.AssignableToTypeOf(&runner.PutInCacheTask{}), false)
		f.root.EXPECT().Dec().Return(nil)

		require.NoError(t, runner.NewWriteThroughCachesTask(f.build(), node, f.root).Run(t.Context()))
	})
}

func TestPutInCacheTask(t *testing.T) {
	f := newFixture(t)
	node := compileNode("gen")
	node.ContentUID = "content-gen"
	node.DirOutputs = []string{"$(BUILD_ROOT)/gen"}
	out := f.rootDir + "/obj/gen.o"
	extra := f.rootDir + "/gen/a.txt"

	f.root.EXPECT().Outputs().Return([]string{out})
	f.root.EXPECT().DirOutputFiles().Return([]string{extra, out}, nil)
	gomock.InOrder(
		f.cache.EXPECT().Put(gomock.Any(), "gen", f.rootDir, []string{extra, out}).Return(nil),
		f.cache.EXPECT().Put(gomock.Any(), "content-gen", f.rootDir, []string{extra, out}).Return(errors.New("disk full")),
		f.root.EXPECT().Dec().Return(nil),
	)

	task := runner.NewPutInCacheTask(f.build(), node, f.root)
	require.NoError(t, task.Run(t.Context()))

	assert.Equal(t, domain.ResInfo{IO: 1}, task.Res())
	assert.Equal(t, "put_in_cache[CC]", task.ShortName())
	assert.Equal(t, "put into local cache, clean build dir", f.ledger.ExecutionLog()["PutInCache(gen)"].Type)
}

func TestPutInDistCacheTask(t *testing.T) {
	f := newFixture(t)
	dist := f.withDist()
	node := compileNode("a")
	node.ContentUID = "content-a"

	f.root.EXPECT().Outputs().Return([]string{f.rootDir + "/obj/a.o"})
	gomock.InOrder(
		dist.EXPECT().Put(gomock.Any(), "a", f.rootDir, []string{f.rootDir + "/obj/a.o"}).Return(nil),
		f.root.EXPECT().Dec().Return(nil),
	)

	task := runner.NewPutInDistCacheTask(f.build(), node, f.root)
	require.NoError(t, task.Run(t.Context()))
	assert.Equal(t, "put_in_dist_cache[CC]", task.ShortName())
	assert.Contains(t, f.ledger.ExecutionLog(), "PutInDistCache(a)")
}

func TestRestoreFromCacheTask(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		f := newFixture(t)
		node := compileNode("a")
		digests := &domain.OutputDigests{OutputsUID: "out-a"}

		f.root.EXPECT().Create().Return(nil)
		f.cache.EXPECT().TryRestore(gomock.Any(), "a", f.rootDir).Return(true, nil)
		f.root.EXPECT().Validate().Return(nil)
		f.root.EXPECT().ReadOutputDigests(false).Return(digests, nil)

		var task *runner.RestoreFromCacheTask
		f.host.EXPECT().EagerResult(gomock.Any()).Do(func(p ports.NodeProducer) {
			assert.Same(t, task, p)
			assert.Equal(t, domain.StateCacheHit, p.Result().State)
		})

		task = runner.NewRestoreFromCacheTask(f.build(), node, f.root)
		require.NoError(t, task.Run(t.Context()))

		assert.Same(t, digests, node.OutputDigests)
		assert.Equal(t, domain.ResInfo{CPU: 1}, task.Res())
		assert.Equal(t, "restore[CC]", task.ShortName())
		assert.Equal(t, map[string]int{"a": 0}, f.ledger.ExitCodes())
	})

	t.Run("hit uploads to dist cache", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.ContentUIDs = false
		dist := f.withDist()
		node := compileNode("a")

		f.root.EXPECT().Create().Return(nil)
		f.cache.EXPECT().TryRestore(gomock.Any(), "a", f.rootDir).Return(true, nil)
		f.root.EXPECT().Validate().Return(nil)
		f.root.EXPECT().Outputs().Return(nil)
		dist.EXPECT().Readonly().Return(false)
		dist.EXPECT().Fits(gomock.Any()).Return(true)
		dist.EXPECT().Has(gomock.Any(), "a").Return(false, nil)
		f.root.EXPECT().Inc().Return(nil)
		f.host.EXPECT().Enqueue(gomock.AssignableToTypeOf(&runner.PutInDistCacheTask{}), false)
		f.host.EXPECT().EagerResult(gomock.Any())

		require.NoError(t, runner.NewRestoreFromCacheTask(f.build(), node, f.root).Run(t.Context()))
	})

	t.Run("miss runs the node", func(t *testing.T) {
		f := newFixture(t)
		node := compileNode("a")

		f.root.EXPECT().Create().Return(nil)
		f.cache.EXPECT().TryRestore(gomock.Any(), "a", f.rootDir).Return(false, nil)
		f.host.EXPECT().ExecRunNode(node, f.root)

		task := runner.NewRestoreFromCacheTask(f.build(), node, f.root)
		require.NoError(t, task.Run(t.Context()))
		assert.Equal(t, domain.StatePending, task.Result().State)
		assert.Equal(t, "get from local cache", f.ledger.ExecutionLog()["FromCache(a $(BUILD_ROOT)/obj/a.o)"].Type)
	})

	t.Run("invalid restore runs the node", func(t *testing.T) {
		f := newFixture(t)
		node := compileNode("a")

		f.root.EXPECT().Create().Return(nil)
		f.cache.EXPECT().TryRestore(gomock.Any(), "a", f.rootDir).Return(true, nil)
		f.root.EXPECT().Validate().Return(errors.New("missing output"))
		f.host.EXPECT().ExecRunNode(node, f.root)

		require.NoError(t, runner.NewRestoreFromCacheTask(f.build(), node, f.root).Run(t.Context()))
	})
}
