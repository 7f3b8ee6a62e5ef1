// Package runner makes single graph nodes done: it restores them from caches, steals the
// outputs of their dependencies and runs their actions through an executor.
package runner

import (
	"os"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
)

// Build holds the collaborators shared by every task of one build.
// DistCache and BuildTime may be nil when the corresponding store is disabled.
type Build struct {
	Config   *domain.Config
	Graph    *domain.Graph
	Patterns *domain.Patterns

	Executor  ports.Executor
	Cache     ports.Cache
	DistCache ports.DistCache
	BuildTime ports.BuildTimeCache
	Fuse      ports.FuseManager
	FS        ports.FileSystem

	Host    ports.TaskHost
	Ledger  *domain.RunLedger
	Display ports.Display
	Logger  ports.Logger
	Tracer  ports.Tracer
	Metrics ports.Metrics

	// Now and Environ default to time.Now and os.Environ.
	Now     func() time.Time
	Environ func() []string
}

func (b *Build) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Build) environ() []string {
	if b.Environ != nil {
		return b.Environ()
	}
	return os.Environ()
}

// distWritable reports whether a distributed cache is configured and accepts puts.
func (b *Build) distWritable() bool {
	return b.DistCache != nil && !b.DistCache.Readonly()
}

// supportsBuildTime reports whether build times of n are recorded.
// Test nodes are excluded since their duration depends on the tests selected.
func (b *Build) supportsBuildTime(n *domain.Node) bool {
	return b.BuildTime != nil && n.StaticUID != "" && !domain.IsTestShorthand(n.Kind())
}
