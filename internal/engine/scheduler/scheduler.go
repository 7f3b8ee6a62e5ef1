// Package scheduler dispatches the nodes of a build graph to the worker pool in dependency order.
package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/engine/runner"
	"go.trai.ch/noderun/internal/engine/workerpool"
	"go.trai.ch/zerr"
)

// Request describes one build.
type Request struct {
	Graph    *domain.Graph
	Patterns *domain.Patterns
	Roots    ports.BuildRootSet

	// Targets are the uids to build. Empty builds the graph results.
	Targets []string
}

// Report is the outcome of a build.
type Report struct {
	Targets []string
	Results map[string]domain.NodeResult
	Ledger  *domain.RunLedger
}

// Failed returns the sorted uids of the nodes that did not produce their outputs.
func (r *Report) Failed() []string {
	var failed []string
	for uid, res := range r.Results {
		if res.Failed() {
			failed = append(failed, uid)
		}
	}
	slices.Sort(failed)
	return failed
}

// Scheduler runs builds.
type Scheduler struct {
	base runner.Build
}

// NewScheduler creates a Scheduler. base holds the collaborators shared by every build;
// its Graph, Patterns, Host and Ledger are set per build.
func NewScheduler(base runner.Build) *Scheduler {
	return &Scheduler{base: base}
}

// Run builds the requested nodes and everything they depend on.
// It returns domain.ErrBuildExecutionFailed when a node failed and domain.ErrCancelled when ctx
// was cancelled. Any other error is fatal to the build.
func (s *Scheduler) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Graph.Validate(); err != nil {
		return nil, err
	}

	targets := req.Targets
	if len(targets) == 0 {
		targets = req.Graph.Results()
	}
	uids, err := req.Graph.Closure(targets)
	if err != nil {
		return nil, err
	}

	ctx, span := s.base.Tracer.Start(ctx, "build",
		ports.WithAttribute("build.nodes", len(uids)),
		ports.WithAttribute("build.targets", len(targets)),
	)
	defer span.End()

	state := s.newRunState(ctx, req, targets, uids)
	defer state.cancel()

	state.pool.Start(state.ctx)
	state.start()
	state.runExecutionLoop()

	err = state.finish(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return state.report, err
}

// nodeState tracks one node of the build.
type nodeState struct {
	node    *domain.Node
	root    ports.BuildRoot
	pending int

	probing    bool
	dispatched bool
	done       bool
}

// event is sent by tasks running on the pool. Every node sends at most one miss and one
// result, so a buffer of two per node never blocks.
type event struct {
	result ports.NodeProducer
	miss   *domain.Node
	root   ports.BuildRoot
}

type runState struct {
	s      *Scheduler
	build  *runner.Build
	graph  *domain.Graph
	roots  ports.BuildRootSet
	pool   *workerpool.Pool
	ctx    context.Context
	cancel context.CancelFunc

	nodes     map[string]*nodeState
	order     []string
	ready     []string
	remaining int
	events    chan event
	report    *Report

	mu        sync.Mutex
	producers map[string]ports.NodeProducer

	stopOnce sync.Once
}

func (s *Scheduler) newRunState(ctx context.Context, req Request, targets, uids []string) *runState {
	ctx, cancel := context.WithCancel(ctx)

	build := s.base
	build.Graph = req.Graph
	build.Patterns = req.Patterns
	build.Ledger = domain.NewRunLedger()

	state := &runState{
		s:         s,
		build:     &build,
		graph:     req.Graph,
		roots:     req.Roots,
		pool:      workerpool.New(build.Config.Capacity(), build.Config.Workers(), workerpool.WithMetrics(build.Metrics), workerpool.WithLogger(build.Logger)),
		ctx:       ctx,
		cancel:    cancel,
		nodes:     make(map[string]*nodeState, len(uids)),
		order:     uids,
		remaining: len(uids),
		events:    make(chan event, 2*len(uids)),
		producers: make(map[string]ports.NodeProducer, len(uids)),
		report: &Report{
			Targets: targets,
			Results: make(map[string]domain.NodeResult, len(uids)),
			Ledger:  build.Ledger,
		},
	}
	build.Host = state

	for _, uid := range uids {
		node, _ := req.Graph.Node(uid)
		state.nodes[uid] = &nodeState{node: node}
	}
	for _, st := range state.nodes {
		for _, dep := range st.node.Deps {
			if _, ok := state.nodes[dep]; ok {
				st.pending++
			}
		}
	}

	// Graph results hold a reference on their root; explicit targets need one too.
	if len(req.Targets) > 0 {
		results := req.Graph.Results()
		for _, uid := range req.Targets {
			if !slices.Contains(results, uid) {
				state.nodes[uid].node.Refcount++
			}
		}
	}

	return state
}

// start probes the cache for every restorable node and queues the nodes without dependencies.
func (state *runState) start() {
	for _, uid := range state.order {
		st := state.nodes[uid]
		if state.restorable(st.node) {
			st.probing = true
			st.root = state.newRoot(st.node)
			state.pool.Add(state.ctx, runner.NewRestoreFromCacheTask(state.build, st.node, st.root), false)
			continue
		}
		if st.pending == 0 {
			state.ready = append(state.ready, uid)
		}
	}
}

func (state *runState) restorable(n *domain.Node) bool {
	cfg := state.build.Config
	return n.Cacheable() && !cfg.ClearBuild && !cfg.NoCache
}

func (state *runState) newRoot(n *domain.Node) ports.BuildRoot {
	return state.roots.New(n.Outputs, n.Refcount, n.DirOutputs, state.build.Config.ContentUIDs)
}

func (state *runState) runExecutionLoop() {
	for state.remaining > 0 {
		state.schedule()

		select {
		case ev := <-state.events:
			state.handle(ev)
		case <-state.ctx.Done():
			return
		case <-state.pool.Failed():
			state.cancel()
			return
		}
	}
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.ctx.Err() == nil {
		uid := state.ready[0]
		state.ready = state.ready[1:]
		state.dispatch(state.nodes[uid])
	}
}

func (state *runState) dispatch(st *nodeState) {
	st.dispatched = true
	if st.root == nil {
		st.root = state.newRoot(st.node)
	}

	task := runner.NewRunNodeTask(state.build, st.node, st.root, state.depProducers(st.node))
	if est := task.BuildTimeWithDeps(state.ctx); est > 0 {
		state.build.Logger.Debug("dispatching node", "uid", st.node.UID, "estimate", time.Duration(est)*time.Second)
	}
	state.pool.Add(state.ctx, task, false)
}

// depProducers returns the finished dependencies of n in declared order.
func (state *runState) depProducers(n *domain.Node) []ports.NodeProducer {
	state.mu.Lock()
	defer state.mu.Unlock()
	deps := make([]ports.NodeProducer, 0, len(n.Deps))
	for _, uid := range n.Deps {
		if p, ok := state.producers[uid]; ok {
			deps = append(deps, p)
		}
	}
	return deps
}

func (state *runState) handle(ev event) {
	switch {
	case ev.result != nil:
		state.handleResult(ev.result)
	case ev.miss != nil:
		st, ok := state.nodes[ev.miss.UID]
		if !ok || st.done {
			return
		}
		st.probing = false
		st.root = ev.root
		if st.pending == 0 {
			state.ready = append(state.ready, st.node.UID)
		}
	}
}

func (state *runState) handleResult(p ports.NodeProducer) {
	st, ok := state.nodes[p.UID()]
	if !ok || st.done {
		return
	}
	st.done = true
	state.remaining--

	res := p.Result()
	state.report.Results[st.node.UID] = res
	state.build.Display.NodeFinished(st.node, res)

	for _, uid := range state.graph.Dependents(st.node.UID) {
		d, ok := state.nodes[uid]
		if !ok {
			continue
		}
		d.pending--
		if d.pending == 0 && !d.probing && !d.dispatched && !d.done {
			state.ready = append(state.ready, uid)
		}
	}
}

// finish waits for the pool, collects late results, links the requested outputs and releases
// the build roots.
func (state *runState) finish(parent context.Context) error {
	poolErr := state.pool.Wait()
	if err := state.pool.Close(); err != nil {
		poolErr = errors.Join(poolErr, err)
	}
	state.drain()

	cleanupCtx := context.WithoutCancel(parent)
	state.linkOutputs()
	if state.build.Config.KeepTemps {
		if err := state.roots.Close(); err != nil {
			state.build.Logger.Warn("failed to release build roots", "error", err)
		}
	} else if err := state.roots.Cleanup(cleanupCtx); err != nil {
		state.build.Logger.Warn("failed to clean build roots", "error", err)
	}

	switch {
	case len(state.report.Failed()) > 0:
		return domain.ErrBuildExecutionFailed
	case parent.Err() != nil:
		return domain.ErrCancelled
	case poolErr != nil:
		return zerr.Wrap(poolErr, domain.ErrBuildExecutionFailed.Error())
	case state.remaining > 0:
		return domain.ErrCancelled
	}
	return nil
}

func (state *runState) drain() {
	for {
		select {
		case ev := <-state.events:
			if ev.result != nil {
				state.handleResult(ev.result)
			}
		default:
			return
		}
	}
}

// linkOutputs hard links the outputs of the requested nodes into the output directory.
func (state *runState) linkOutputs() {
	dir := state.build.Config.OutputDir
	if dir == "" {
		return
	}
	for _, uid := range state.report.Targets {
		st, ok := state.nodes[uid]
		if !ok || !st.done || st.root == nil || state.report.Results[uid].Failed() {
			continue
		}
		for _, out := range st.root.Outputs() {
			rel, err := filepath.Rel(st.root.Path(), out)
			if err != nil || strings.HasPrefix(rel, "..") {
				continue
			}
			dst := filepath.Join(dir, rel)
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				state.build.Logger.Warn("failed to create output directory", "path", filepath.Dir(dst), "error", err)
				continue
			}
			if err := state.build.FS.RemoveTree(dst); err != nil {
				state.build.Logger.Warn("failed to replace output", "path", dst, "error", err)
				continue
			}
			if err := state.build.FS.HardlinkTree(out, dst); err != nil {
				state.build.Logger.Warn("failed to link output", "uid", uid, "path", dst, "error", err)
			}
		}
	}
}

// Enqueue adds a follow-up task to the pool.
func (state *runState) Enqueue(task ports.Task, inline bool) {
	state.pool.Add(state.ctx, task, inline)
}

// EagerResult reports a finished node to the execution loop.
func (state *runState) EagerResult(p ports.NodeProducer) {
	state.mu.Lock()
	state.producers[p.UID()] = p
	state.mu.Unlock()
	state.events <- event{result: p}
}

// ExecRunNode reports a cache miss. The node runs once its dependencies are done.
func (state *runState) ExecRunNode(node *domain.Node, root ports.BuildRoot) {
	state.events <- event{miss: node, root: root}
}

// FastFail stops the build after a node failure unless keep_going is set.
func (state *runState) FastFail() {
	if state.build.Config.KeepGoing {
		return
	}
	state.stopOnce.Do(func() {
		state.build.Logger.Info("stopping the build after a failure")
		state.cancel()
	})
}
