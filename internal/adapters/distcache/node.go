package distcache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/logger"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the distributed cache factory Graft node.
const NodeID graft.ID = "adapter.cache.dist"

// Factory opens the distributed cache selected by the configuration.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// Open connects to the configured backend. It returns nil when the backend is none.
func (f *Factory) Open(ctx context.Context, cfg domain.DistCacheConfig) (*Cache, error) {
	var (
		blobs  Blobs
		prefix string
		err    error
	)
	switch cfg.Backend {
	case domain.DistCacheNone, "":
		return nil, nil
	case domain.DistCacheS3:
		blobs, err = NewS3Blobs(ctx, cfg.S3)
		prefix = cfg.S3.Prefix
	case domain.DistCacheRedis:
		blobs, err = NewRedisBlobs(ctx, cfg.Redis)
		prefix = cfg.Redis.Prefix
	default:
		return nil, zerr.With(domain.ErrInvalidDistCacheBackend, "backend", string(cfg.Backend))
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "backend", string(cfg.Backend))
	}

	f.logger.Debug("dist cache enabled", "backend", string(cfg.Backend), "readonly", cfg.Readonly)
	return New(blobs, Options{
		Prefix:        prefix,
		Readonly:      cfg.Readonly,
		MaxSize:       cfg.MaxSize,
		PutsPerSecond: cfg.PutsPerSecond,
	}, f.logger), nil
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
