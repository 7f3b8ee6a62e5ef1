package runner

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

// cacheTask is the common part of the tasks that move a build root into or out of caches.
type cacheTask struct {
	b    *Build
	node *domain.Node
	root ports.BuildRoot
}

func (c cacheTask) Prio() int { return 0 }

// shouldPutInDist reports whether the root outputs must be uploaded to the distributed cache.
func (c cacheTask) shouldPutInDist(ctx context.Context) bool {
	if !c.b.distWritable() || !c.b.DistCache.Fits(c.root.Outputs()) {
		return false
	}
	has, err := c.b.DistCache.Has(ctx, c.node.UID)
	if err != nil {
		c.b.Logger.Warn("dist cache lookup failed", "uid", c.node.UID, "error", err)
		return false
	}
	return !has
}

func (c cacheTask) dec() {
	if err := c.root.Dec(); err != nil {
		c.b.Logger.Warn("failed to release build root", "uid", c.node.UID, "error", err)
	}
}

// WriteThroughCachesTask fans a successful root out to the local and the distributed cache.
// It owns two references of the root, one per cache.
type WriteThroughCachesTask struct {
	cacheTask
}

// NewWriteThroughCachesTask creates the fan-out task of root.
func NewWriteThroughCachesTask(b *Build, node *domain.Node, root ports.BuildRoot) *WriteThroughCachesTask {
	return &WriteThroughCachesTask{cacheTask{b: b, node: node, root: root}}
}

// Run enqueues the put tasks and drops the references of the caches that are skipped.
func (w *WriteThroughCachesTask) Run(ctx context.Context) error {
	b := w.b
	inline := b.Config.EagerExecution

	if b.Config.StoreWriteThrough || !b.distWritable() {
		b.Host.Enqueue(NewPutInCacheTask(b, w.node, w.root), inline)
	} else {
		w.dec()
	}

	if w.shouldPutInDist(ctx) {
		b.Host.Enqueue(NewPutInDistCacheTask(b, w.node, w.root), inline)
	} else {
		w.dec()
	}
	return nil
}

// Res returns no resources.
func (w *WriteThroughCachesTask) Res() domain.ResInfo { return domain.ResInfo{} }

// ShortName returns write_through_caches[<kind>].
func (w *WriteThroughCachesTask) ShortName() string {
	return "write_through_caches[" + w.node.ShortName() + "]"
}

func (w *WriteThroughCachesTask) String() string {
	return "WriteThroughCaches(" + w.node.UID + ")"
}

// PutInCacheTask stores the outputs of a root in the local cache and releases the root.
type PutInCacheTask struct {
	cacheTask
}

// NewPutInCacheTask creates the local cache put of root.
func NewPutInCacheTask(b *Build, node *domain.Node, root ports.BuildRoot) *PutInCacheTask {
	return &PutInCacheTask{cacheTask{b: b, node: node, root: root}}
}

// Run puts the outputs under the node uid and, when defined, its content uid.
// Cache failures are logged and do not fail the build.
func (p *PutInCacheTask) Run(ctx context.Context) error {
	b := p.b
	defer p.dec()

	start := b.now()
	files := p.root.Outputs()
	if len(p.node.DirOutputs) > 0 {
		extra, err := p.root.DirOutputFiles()
		if err != nil {
			b.Logger.Warn("failed to list dir outputs", "uid", p.node.UID, "error", err)
		}
		files = append(files, extra...)
	}
	slices.Sort(files)
	files = slices.Compact(files)

	for _, uid := range p.keys() {
		if err := b.Cache.Put(ctx, uid, p.root.Path(), files); err != nil {
			b.Logger.Error(zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", uid))
		}
	}

	b.Ledger.RecordExecution(p.String(), domain.ExecutionLogEntry{
		Timing: [2]time.Time{start, b.now()},
		Type:   "put into local cache, clean build dir",
	})
	return nil
}

func (p *PutInCacheTask) keys() []string {
	if p.node.ContentUID == "" {
		return []string{p.node.UID}
	}
	return []string{p.node.UID, p.node.ContentUID}
}

// Res holds one io slot.
func (p *PutInCacheTask) Res() domain.ResInfo { return domain.ResInfo{IO: 1} }

// ShortName returns put_in_cache[<kind>].
func (p *PutInCacheTask) ShortName() string {
	return "put_in_cache[" + p.node.ShortName() + "]"
}

func (p *PutInCacheTask) String() string {
	return "PutInCache(" + p.node.UID + ")"
}

// PutInDistCacheTask uploads the outputs of a root to the distributed cache and releases the root.
type PutInDistCacheTask struct {
	cacheTask
}

// NewPutInDistCacheTask creates the distributed cache upload of root.
func NewPutInDistCacheTask(b *Build, node *domain.Node, root ports.BuildRoot) *PutInDistCacheTask {
	return &PutInDistCacheTask{cacheTask{b: b, node: node, root: root}}
}

// Run uploads the outputs under the node uid.
func (p *PutInDistCacheTask) Run(ctx context.Context) error {
	b := p.b
	defer p.dec()

	start := b.now()
	if err := b.DistCache.Put(ctx, p.node.UID, p.root.Path(), p.root.Outputs()); err != nil {
		b.Logger.Error(zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", p.node.UID))
	}

	b.Ledger.RecordExecution(p.String(), domain.ExecutionLogEntry{
		Timing: [2]time.Time{start, b.now()},
		Type:   "put to dist cache",
	})
	return nil
}

// Res holds one io slot.
func (p *PutInDistCacheTask) Res() domain.ResInfo { return domain.ResInfo{IO: 1} }

// ShortName returns put_in_dist_cache[<kind>].
func (p *PutInDistCacheTask) ShortName() string {
	return "put_in_dist_cache[" + p.node.ShortName() + "]"
}

func (p *PutInDistCacheTask) String() string {
	return "PutInDistCache(" + p.node.UID + ")"
}

// RestoreFromCacheTask tries the local cache by node uid before a node runs.
// On a miss it asks the host to run the node in the same root.
type RestoreFromCacheTask struct {
	cacheTask

	mu     sync.Mutex
	result domain.NodeResult
}

var _ ports.NodeProducer = (*RestoreFromCacheTask)(nil)

// NewRestoreFromCacheTask creates the restore task of node into root.
func NewRestoreFromCacheTask(b *Build, node *domain.Node, root ports.BuildRoot) *RestoreFromCacheTask {
	return &RestoreFromCacheTask{
		cacheTask: cacheTask{b: b, node: node, root: root},
		result:    domain.NodeResult{UID: node.UID, State: domain.StatePending},
	}
}

// UID returns the node uid.
func (r *RestoreFromCacheTask) UID() string { return r.node.UID }

// BuildRoot returns the root the outputs are restored into.
func (r *RestoreFromCacheTask) BuildRoot() ports.BuildRoot { return r.root }

// Result returns the cache hit result.
func (r *RestoreFromCacheTask) Result() domain.NodeResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Run restores the outputs or hands the node over to execution.
func (r *RestoreFromCacheTask) Run(ctx context.Context) error {
	b := r.b
	start := b.now()

	if err := r.root.Create(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildRootCreateFailed.Error()), "uid", r.node.UID)
	}

	hit, err := b.Cache.TryRestore(ctx, r.node.UID, r.root.Path())
	if err != nil {
		b.Logger.Warn("local cache restore failed", "uid", r.node.UID, "error", err)
		hit = false
	}
	b.Metrics.CacheLookup("local", hit)

	if hit {
		hit = r.accept(ctx, start)
	}
	if !hit {
		b.Host.ExecRunNode(r.node, r.root)
	}

	b.Ledger.RecordExecution(r.String(), domain.ExecutionLogEntry{
		Timing: [2]time.Time{start, b.now()},
		Type:   "get from local cache",
	})
	return nil
}

// accept validates restored outputs and publishes the node. A root that fails validation is
// treated as a miss.
func (r *RestoreFromCacheTask) accept(ctx context.Context, start time.Time) bool {
	b := r.b
	cfg := b.Config

	if cfg.DirOutputsTestMode && cfg.RunnerDirOutputs {
		if err := r.root.PropagateDirOutputs(); err != nil {
			b.Logger.Warn("restored dir outputs are broken", "uid", r.node.UID, "error", err)
			return false
		}
	}
	if err := r.root.Validate(); err != nil {
		b.Logger.Warn("restored outputs failed validation", "uid", r.node.UID, "error", err)
		return false
	}

	if cfg.ContentUIDs {
		digests, err := r.root.ReadOutputDigests(false)
		if err != nil {
			b.Logger.Warn("failed to read output digests", "uid", r.node.UID, "error", err)
		}
		r.node.OutputDigests = digests
	}

	if r.shouldPutInDist(ctx) {
		if err := r.root.Inc(); err != nil {
			b.Logger.Warn("cannot keep build root for caching", "uid", r.node.UID, "error", err)
		} else {
			b.Host.Enqueue(NewPutInDistCacheTask(b, r.node, r.root), cfg.EagerExecution)
		}
	}

	r.mu.Lock()
	r.result = domain.NodeResult{
		UID:    r.node.UID,
		State:  domain.StateCacheHit,
		Start:  start,
		Finish: b.now(),
	}
	r.mu.Unlock()

	b.Ledger.RecordExitCode(r.node.UID, 0)
	b.Host.EagerResult(r)
	return true
}

// Res holds one cpu slot.
func (r *RestoreFromCacheTask) Res() domain.ResInfo { return domain.ResInfo{CPU: 1} }

// ShortName returns restore[<kind>].
func (r *RestoreFromCacheTask) ShortName() string {
	return "restore[" + r.node.ShortName() + "]"
}

func (r *RestoreFromCacheTask) String() string {
	return "FromCache(" + r.node.String() + ")"
}
