package buildtime

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/logger"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
)

// NodeID is the unique identifier for the build time store factory Graft node.
const NodeID graft.ID = "adapter.buildtime"

// Factory opens build time stores.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// Open opens the store configured by cfg.
func (f *Factory) Open(cfg domain.BuildTimeConfig) (*Store, error) {
	return Open(cfg.Dir, cfg.InMemory, f.logger)
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
