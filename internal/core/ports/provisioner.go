package ports

import (
	"context"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
)

// Provisioner builds the adapters that depend on the loaded configuration.
//
//go:generate mockgen -source=provisioner.go -destination=mocks/mock_provisioner.go -package=mocks
type Provisioner interface {
	// Executor returns the popen executor or a client of the remote executor.
	Executor(ctx context.Context, cfg *domain.Config) (Executor, error)
	// ExecutorServer returns the execution service backed by a popen executor.
	// The service exits once it had no work for idleTimeout.
	ExecutorServer(cfg *domain.Config, idleTimeout time.Duration) ExecutorServer
	// Cache opens the local output cache.
	Cache(cfg *domain.Config) (Cache, error)
	// DistCache opens the distributed cache. It returns nil when none is configured.
	DistCache(ctx context.Context, cfg *domain.Config) (DistCache, error)
	// BuildTime opens the build time store.
	BuildTime(cfg *domain.Config) (BuildTimeCache, error)
	// BuildRoots locks a new set of build roots.
	BuildRoots(cfg *domain.Config) (BuildRootSet, error)
	// Fuse returns the sandbox manager.
	Fuse(cfg *domain.Config) FuseManager
}

// ExecutorServer serves the remote execution service.
type ExecutorServer interface {
	// Serve listens on the Unix socket at socketPath until ctx is done or the service idled out.
	Serve(ctx context.Context, socketPath string) error
}
