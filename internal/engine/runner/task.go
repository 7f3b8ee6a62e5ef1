package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

const kindRunNode = "run"

// RunNodeTask makes one node done by content uid restore, by execution or by reporting it broken.
type RunNodeTask struct {
	b      *Build
	node   *domain.Node
	root   ports.BuildRoot
	deps   []ports.NodeProducer
	action domain.Action
	res    domain.ResInfo

	patterns *domain.Patterns
	timings  *domain.DetailedTimelineStore
	tags     *domain.Tags

	mu        sync.Mutex
	status    string
	rawStderr string
	result    domain.NodeResult
}

var (
	_ ports.Task         = (*RunNodeTask)(nil)
	_ ports.NodeProducer = (*RunNodeTask)(nil)
)

// NewRunNodeTask creates the task running node in root. deps are the producers of the node
// dependencies in any order.
func NewRunNodeTask(b *Build, node *domain.Node, root ports.BuildRoot, deps []ports.NodeProducer) *RunNodeTask {
	res, err := domain.Classify(node, b.Config.Threads, b.Config.TestThreads)
	if err != nil {
		b.Logger.Warn("invalid resource requirements, assuming one cpu", "uid", node.UID, "error", err)
		res = domain.ResInfo{CPU: 1}
	}

	patterns := b.Patterns.Sub()
	patterns.Set(domain.BuildRoot, root.Path())

	return &RunNodeTask{
		b:        b,
		node:     node,
		root:     root,
		deps:     deps,
		action:   node.Action(),
		res:      res,
		patterns: patterns,
		timings:  domain.NewDetailedTimelineStore(),
		tags:     domain.NewTags(node.Tags...),
		result:   domain.NodeResult{UID: node.UID, State: domain.StatePending},
	}
}

// UID returns the node uid.
func (t *RunNodeTask) UID() string { return t.node.UID }

// BuildRoot returns the root the node runs in.
func (t *RunNodeTask) BuildRoot() ports.BuildRoot { return t.root }

// Result returns the node result. It is final once the host received EagerResult.
func (t *RunNodeTask) Result() domain.NodeResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// RawStderr returns the unfiltered stderr of the last command or the failure of a node function.
func (t *RunNodeTask) RawStderr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rawStderr
}

// Timings returns the recorded stages of the task.
func (t *RunNodeTask) Timings() map[domain.Stage][]domain.TimelineEvent {
	return t.timings.Dump()
}

// Run makes the node done. Node failures are reported through the result; the returned error
// is either domain.ErrCancelled or a failure that must abort the build.
func (t *RunNodeTask) Run(ctx context.Context) error {
	b := t.b
	ctx, span := b.Tracer.Start(ctx, t.ShortName(),
		ports.WithAttribute("node.uid", t.node.UID),
		ports.WithAttribute("node.kind", t.node.ShortName()),
	)
	defer span.End()

	err := t.run(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (t *RunNodeTask) run(ctx context.Context) error {
	b := t.b
	started := b.now()
	t.timings.StartStage(domain.StagePrepare, started)

	if err := t.root.Create(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildRootCreateFailed.Error()), "uid", t.node.UID)
	}
	if b.Config.ClearBuild {
		if err := b.Cache.ClearUID(ctx, t.node.UID); err != nil {
			b.Logger.Warn("failed to clear cache entry", "uid", t.node.UID, "error", err)
		}
	}

	var broken string
	if unresolved := t.patterns.Unresolved(append(domain.NodeStrings(t.node), t.node.Outputs...)...); len(unresolved) > 0 {
		broken = "unresolved patterns: " + strings.Join(unresolved, ", ")
	}

	var (
		cached bool
		timing [2]time.Time
	)
	if broken == "" {
		if t.selfUIDSupport() {
			cached, timing = t.restoreByContentUID(ctx)
		}
		if !cached {
			broken = t.stealDeps()
		}
	}

	entry := domain.ExecutionLogEntry{Type: kindRunNode}

	var (
		state    domain.NodeState
		stderr   string
		exitCode int
		timed    bool
	)
	switch {
	case broken != "":
		t.tags.Add(domain.TagBrokenByDeps)
		state, stderr, exitCode = domain.StateBrokenByDeps, broken, 1

	case cached:
		state, timed = domain.StateCacheHit, true
		entry.DynamicallyResolvedCache = true
		t.timings.StartStage(domain.StageValidate, b.now())
		if err := t.root.Validate(); err != nil {
			t.tags.Add(domain.TagFailed)
			stderr = fmt.Sprintf("Restored outputs failed to pass build integrity check in %s\n%v", t.root.Path(), err)
			exitCode = domain.InternalErrorExitCode
		}

	default:
		t.setState(domain.StateExecuting)
		err := b.Fuse.Manage(ctx, t.node, t.patterns, func(ctx context.Context) error {
			var err error
			stderr, exitCode, timing, err = t.build(ctx)
			return err
		})
		if err != nil {
			return t.abort(ctx, err)
		}
		state, timed = domain.StateDone, true
	}

	t.timings.StartStage(domain.StageOutputDigests, b.now())
	if exitCode == 0 && b.Config.ContentUIDs {
		digests, err := t.root.ReadOutputDigests(true)
		if err != nil {
			t.tags.Add(domain.TagFailed)
			stderr = fmt.Sprintf("Failed to compute output digests in %s\n%v", t.root.Path(), err)
			exitCode = domain.InternalErrorExitCode
		} else {
			t.node.OutputDigests = digests
		}
	}

	if timed {
		entry.Timing = timing
	}
	if exitCode != 0 && state != domain.StateBrokenByDeps {
		b.Ledger.RecordBuildError(t.node.UID, stderr)
	}
	b.Ledger.RecordExitCode(t.node.UID, exitCode)

	if exitCode != 0 {
		b.Host.FastFail()
	} else if t.node.Cacheable() {
		t.scheduleWriteThrough()
	}

	t.mu.Lock()
	t.result = domain.NodeResult{
		UID:      t.node.UID,
		State:    state,
		ExitCode: exitCode,
		Stderr:   stderr,
		Tags:     t.tags.List(),
		Status:   t.status,
		Start:    timing[0],
		Finish:   timing[1],
	}
	t.mu.Unlock()

	b.Host.EagerResult(t)

	finished := b.now()
	t.timings.Finish(finished)
	entry.DetailedTimings = t.timings.Dump()
	b.Ledger.RecordExecution(t.node.UID, entry)
	b.Metrics.NodeFinished(t.node.ShortName(), state, exitCode, finished.Sub(started))

	return nil
}

// abort handles an error that unwinds the task: cancellation or a broken node function.
// Neither writes to caches nor records a build error.
func (t *RunNodeTask) abort(ctx context.Context, err error) error {
	t.timings.Finish(t.b.now())
	if errors.Is(err, domain.ErrCancelled) || ctx.Err() != nil {
		t.b.Logger.Debug("node cancelled", "uid", t.node.UID)
		if errors.Is(err, domain.ErrCancelled) {
			return err
		}
		return zerr.With(zerr.Wrap(err, domain.ErrCancelled.Error()), "uid", t.node.UID)
	}
	return err
}

func (t *RunNodeTask) selfUIDSupport() bool {
	return t.node.HasSelfUIDSupport() && !t.b.Config.ClearBuild && t.b.Config.ContentUIDs
}

// restoreByContentUID restores the outputs from the local or the distributed cache by content
// uid. The content uid is only defined when every dependency has output digests.
func (t *RunNodeTask) restoreByContentUID(ctx context.Context) (bool, [2]time.Time) {
	b := t.b
	uid, ok := domain.ContentUID(t.node, b.Graph.DepNodes(t.node))
	if !ok {
		return false, [2]time.Time{}
	}
	t.node.ContentUID = uid

	start := b.now()
	t.timings.StartStage(domain.StageRestoreContentUID, start, "content_uid", uid)

	hit, err := b.Cache.TryRestore(ctx, uid, t.root.Path())
	if err != nil {
		b.Logger.Warn("local cache restore failed", "uid", t.node.UID, "content_uid", uid, "error", err)
		hit = false
	}
	b.Metrics.CacheLookup("local", hit)

	if !hit && b.DistCache != nil {
		has, err := b.DistCache.Has(ctx, uid)
		if err != nil {
			b.Logger.Warn("dist cache lookup failed", "uid", t.node.UID, "content_uid", uid, "error", err)
		}
		if has {
			hit, err = b.DistCache.TryRestore(ctx, uid, t.root.Path())
			if err != nil {
				b.Logger.Warn("dist cache restore failed", "uid", t.node.UID, "content_uid", uid, "error", err)
				hit = false
			}
		}
		b.Metrics.CacheLookup("dist", hit)
	}

	return hit, [2]time.Time{start, b.now()}
}

// stealDeps links the outputs of every built dependency into the root and returns the broken
// message when a required dependency could not be taken.
func (t *RunNodeTask) stealDeps() string {
	t.timings.StartStage(domain.StageStealDeps, t.b.now())

	built := make(map[string]bool, len(t.deps))
	for _, d := range t.deps {
		root := d.BuildRoot()
		if root == nil || !root.OK() {
			continue
		}
		if err := root.Steal(t.root.Path()); err != nil {
			t.b.Logger.Warn("failed to steal dependency outputs", "uid", t.node.UID, "dep", d.UID(), "error", err)
			continue
		}
		built[d.UID()] = true
	}

	if t.node.IgnoreBrokenDependencies {
		return ""
	}
	var missing []string
	for _, dep := range t.node.Deps {
		if !built[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "can not build one or more deps: " + strings.Join(missing, ", ")
}

// scheduleWriteThrough takes one reference for each cache and hands the root to a follow-up task.
func (t *RunNodeTask) scheduleWriteThrough() {
	for range 2 {
		if err := t.root.Inc(); err != nil {
			t.b.Logger.Warn("cannot keep build root for caching", "uid", t.node.UID, "error", err)
			return
		}
	}
	t.b.Host.Enqueue(NewWriteThroughCachesTask(t.b, t.node, t.root), t.b.Config.EagerExecution)
}

func (t *RunNodeTask) setState(s domain.NodeState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.State = s
}

// Res returns the resources of the node kind.
func (t *RunNodeTask) Res() domain.ResInfo { return t.res }

// Prio returns 0.
func (t *RunNodeTask) Prio() int { return 0 }

// ShortName returns run[<kind>].
func (t *RunNodeTask) ShortName() string {
	return "run[" + t.node.ShortName() + "]"
}

func (t *RunNodeTask) String() string {
	return "Run(" + t.node.String() + ")"
}

// Status renders the node with its display tags and the latest status line.
func (t *RunNodeTask) Status() string {
	var sb strings.Builder
	if tags := t.tags.List(); len(tags) > 0 {
		sb.WriteString("[" + strings.Join(tags, " ") + "] ")
	}
	sb.WriteString(t.node.String())

	t.mu.Lock()
	status := t.status
	t.mu.Unlock()
	if status != "" {
		sb.WriteString(" - " + status)
	}
	return sb.String()
}

// BuildTime returns the last recorded build time of the node in seconds.
func (t *RunNodeTask) BuildTime(ctx context.Context) int64 {
	return t.lastBuildTime(ctx, t.node)
}

// BuildTimeWithDeps returns the last recorded build time of the node plus those of its
// direct dependencies.
func (t *RunNodeTask) BuildTimeWithDeps(ctx context.Context) int64 {
	if !t.b.supportsBuildTime(t.node) {
		return 0
	}
	total := t.lastBuildTime(ctx, t.node)
	for _, d := range t.b.Graph.DepNodes(t.node) {
		total += t.lastBuildTime(ctx, d)
	}
	return total
}

func (t *RunNodeTask) lastBuildTime(ctx context.Context, n *domain.Node) int64 {
	if !t.b.supportsBuildTime(n) {
		return 0
	}
	_, seconds, ok, err := t.b.BuildTime.LastUsage(ctx, n.StaticUID)
	if err != nil {
		t.b.Logger.Warn("failed to read build time", "static_uid", n.StaticUID, "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	return seconds
}

// progressSink receives the control messages of the node commands.
type progressSink struct {
	t *RunNodeTask
}

func (s progressSink) Display(msg string) {
	s.t.b.Display.Emit(msg)
}

func (s progressSink) SetStatus(status string) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	s.t.status = status
}

func (s progressSink) AppendTag(tag string) {
	s.t.tags.Add(tag)
}
