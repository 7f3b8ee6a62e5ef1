// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/noderun/internal/core/domain"
)

// ProgressSink receives the control messages a command writes to its stderr.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type ProgressSink interface {
	// Display forwards a message to the live progress output.
	Display(msg string)

	// SetStatus replaces the one-line status of the running node.
	SetStatus(status string)

	// AppendTag adds a display tag to the running node. Duplicates are ignored.
	AppendTag(tag string)
}

// Executor runs a single command of a node.
type Executor interface {
	// Run executes the command described by req and blocks until it exits.
	//
	// Lines written to stderr are parsed with the control protocol: control messages go to sink,
	// every other line is returned in the result.
	//
	// It returns domain.ErrCancelled if ctx is done before the command exits and
	// domain.ErrTextFileBusy if the binary stayed busy for every retry.
	// A non-zero exit code is not an error.
	Run(ctx context.Context, req domain.ExecRequest, sink ProgressSink) (domain.ExecResult, error)
}
