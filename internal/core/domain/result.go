package domain

import (
	"maps"
	"sync"
	"time"
)

// NodeState is the state of a node task.
type NodeState string

const (
	// StatePending is the state before the task is invoked.
	StatePending NodeState = "Pending"
	// StateBrokenByDeps means the node was not executed because of missing dependencies or patterns.
	StateBrokenByDeps NodeState = "BrokenByDeps"
	// StateCacheHit means the outputs were restored from a cache.
	StateCacheHit NodeState = "CacheHit"
	// StateExecuting means the node action is running.
	StateExecuting NodeState = "Executing"
	// StateDone means the node action finished.
	StateDone NodeState = "Done"
)

// NodeResult is what a node task reports to the scheduler.
type NodeResult struct {
	UID      string
	State    NodeState
	ExitCode int
	Stderr   string
	Tags     []string
	Status   string
	Start    time.Time
	Finish   time.Time
}

// Failed reports whether the node did not produce its outputs.
func (r NodeResult) Failed() bool {
	return r.ExitCode != 0
}

// PartialResult is streamed to the progress callback right after a node ran.
type PartialResult struct {
	UID       string   `json:"uid"`
	Status    int      `json:"status"`
	Stderrs   []string `json:"stderrs"`
	BuildRoot string   `json:"build_root"`
	Files     []string `json:"files"`
}

// ExecutionLogEntry describes one finished task in the execution log.
type ExecutionLogEntry struct {
	Timing                   [2]time.Time              `json:"timing"`
	Type                     string                    `json:"type"`
	Prepare                  string                    `json:"prepare"`
	DynamicallyResolvedCache bool                      `json:"dynamically_resolved_cache,omitempty"`
	DetailedTimings          map[Stage][]TimelineEvent `json:"detailed_timings,omitempty"`
}

// RunLedger collects the execution log, build errors and exit codes of a build.
// It is safe for concurrent use.
type RunLedger struct {
	mu           sync.Mutex
	executionLog map[string]ExecutionLogEntry
	buildErrors  map[string]string
	exitCodes    map[string]int
}

// NewRunLedger creates an empty ledger.
func NewRunLedger() *RunLedger {
	return &RunLedger{
		executionLog: make(map[string]ExecutionLogEntry),
		buildErrors:  make(map[string]string),
		exitCodes:    make(map[string]int),
	}
}

// RecordExecution stores the execution log entry of a task.
func (l *RunLedger) RecordExecution(key string, e ExecutionLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.executionLog[key] = e
}

// UpdateExecution modifies an existing execution log entry in place.
func (l *RunLedger) UpdateExecution(key string, fn func(*ExecutionLogEntry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.executionLog[key]
	fn(&e)
	l.executionLog[key] = e
}

// RecordBuildError stores the stderr of a failed node.
func (l *RunLedger) RecordBuildError(uid, stderr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buildErrors[uid] = stderr
}

// RecordExitCode stores the exit code of a node.
func (l *RunLedger) RecordExitCode(uid string, code int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exitCodes[uid] = code
}

// ExecutionLog returns a copy of the execution log.
func (l *RunLedger) ExecutionLog() map[string]ExecutionLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.executionLog)
}

// BuildErrors returns a copy of the build errors keyed by uid.
func (l *RunLedger) BuildErrors() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.buildErrors)
}

// ExitCodes returns a copy of the node exit codes keyed by uid.
func (l *RunLedger) ExitCodes() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.exitCodes)
}
