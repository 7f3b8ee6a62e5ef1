package app

import (
	"context"
	"time"

	"go.trai.ch/noderun/internal/adapters/buildroot"
	"go.trai.ch/noderun/internal/adapters/buildtime"
	"go.trai.ch/noderun/internal/adapters/cas"
	"go.trai.ch/noderun/internal/adapters/distcache"
	"go.trai.ch/noderun/internal/adapters/popen"
	"go.trai.ch/noderun/internal/adapters/remote"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

// Provisioner opens the adapters that depend on the loaded configuration.
type Provisioner struct {
	popen     *popen.Factory
	remote    *remote.Connector
	cache     *cas.Factory
	dist      *distcache.Factory
	buildTime *buildtime.Factory
	roots     *buildroot.Factory
	fuse      ports.FuseManager
	logger    ports.Logger
}

var _ ports.Provisioner = (*Provisioner)(nil)

// NewProvisioner creates a Provisioner from the adapter factories.
func NewProvisioner(
	popenFactory *popen.Factory,
	connector *remote.Connector,
	cacheFactory *cas.Factory,
	distFactory *distcache.Factory,
	buildTimeFactory *buildtime.Factory,
	rootsFactory *buildroot.Factory,
	fuse ports.FuseManager,
	logger ports.Logger,
) *Provisioner {
	return &Provisioner{
		popen:     popenFactory,
		remote:    connector,
		cache:     cacheFactory,
		dist:      distFactory,
		buildTime: buildTimeFactory,
		roots:     rootsFactory,
		fuse:      fuse,
		logger:    logger,
	}
}

// Executor returns the executor selected by cfg. The remote executor is spawned when no
// service answers on the configured socket.
func (p *Provisioner) Executor(ctx context.Context, cfg *domain.Config) (ports.Executor, error) {
	switch cfg.Executor {
	case domain.ExecutorPopen, "":
		return p.popen.New(cfg.ExecutorConfig()), nil
	case domain.ExecutorRemote:
		client, err := p.remote.Connect(ctx, cfg.ExecutorAddress, cfg.ExecutorConfig())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrRemoteExecutorUnavailable.Error()), "socket", cfg.ExecutorAddress)
		}
		p.logger.Debug("connected to executor", "socket", cfg.ExecutorAddress)
		return client, nil
	default:
		return nil, zerr.With(domain.ErrInvalidExecutor, "executor", string(cfg.Executor))
	}
}

// ExecutorServer returns the execution service running commands with a popen executor.
func (p *Provisioner) ExecutorServer(cfg *domain.Config, idleTimeout time.Duration) ports.ExecutorServer {
	return remote.NewServer(p.popen.New(remote.ServiceConfig(cfg.ExecutorConfig())), remote.NewLifecycle(idleTimeout), p.logger)
}

// Cache opens the local output cache.
func (p *Provisioner) Cache(cfg *domain.Config) (ports.Cache, error) {
	store, err := p.cache.Open(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// DistCache opens the distributed cache, or returns nil when the backend is none.
func (p *Provisioner) DistCache(ctx context.Context, cfg *domain.Config) (ports.DistCache, error) {
	cache, err := p.dist.Open(ctx, cfg.DistCache)
	if err != nil || cache == nil {
		return nil, err
	}
	return cache, nil
}

// BuildTime opens the build time store.
func (p *Provisioner) BuildTime(cfg *domain.Config) (ports.BuildTimeCache, error) {
	store, err := p.buildTime.Open(cfg.BuildTime)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// BuildRoots locks a new set of build roots.
func (p *Provisioner) BuildRoots(cfg *domain.Config) (ports.BuildRootSet, error) {
	set, err := p.roots.Open(cfg)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Fuse returns the sandbox manager.
func (p *Provisioner) Fuse(_ *domain.Config) ports.FuseManager {
	return p.fuse
}
