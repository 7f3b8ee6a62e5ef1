package ports

import (
	"context"

	"go.trai.ch/noderun/internal/core/domain"
)

// Task is a unit of work run by the worker pool.
//
//go:generate mockgen -source=task.go -destination=mocks/mock_task.go -package=mocks
type Task interface {
	// Run executes the task. A returned error aborts the build.
	Run(ctx context.Context) error

	// Res returns the resources the task holds while it runs.
	Res() domain.ResInfo

	// Prio returns the task priority. Higher runs first.
	Prio() int

	// ShortName returns a short label such as run[CC].
	ShortName() string

	// String describes the task.
	String() string
}

// NodeProducer is a finished task that made a node available.
type NodeProducer interface {
	// UID returns the node uid.
	UID() string

	// BuildRoot returns the root holding the node outputs.
	BuildRoot() BuildRoot

	// Result returns the node result.
	Result() domain.NodeResult
}

// TaskHost is the scheduler side of a running task.
type TaskHost interface {
	// Enqueue adds a follow-up task. Inline tasks run on the calling goroutine.
	Enqueue(task Task, inline bool)

	// EagerResult reports that the node of p is done.
	EagerResult(p NodeProducer)

	// ExecRunNode schedules execution of node after a cache miss, reusing root.
	ExecRunNode(node *domain.Node, root BuildRoot)

	// FastFail reports a failed node.
	FastFail()
}
