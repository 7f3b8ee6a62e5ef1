package ports

import (
	"context"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
)

// Metrics records build counters.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// NodeFinished records a finished node task.
	NodeFinished(kind string, state domain.NodeState, exitCode int, elapsed time.Duration)

	// CacheLookup records a cache lookup on the named cache.
	CacheLookup(cache string, hit bool)

	// TextFileBusyRetry records one spawn retry.
	TextFileBusyRetry()

	// PoolUsage records the resources currently held by running tasks.
	PoolUsage(usage domain.ResInfo)
}

// MetricsServer exposes recorded metrics over HTTP.
type MetricsServer interface {
	// Serve listens on addr until ctx is done.
	Serve(ctx context.Context, addr string) error
}
