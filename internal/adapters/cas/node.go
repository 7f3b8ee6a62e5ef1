package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/fs"
	"go.trai.ch/noderun/internal/adapters/logger"
	"go.trai.ch/noderun/internal/core/ports"
)

// NodeID is the unique identifier for the local cache factory Graft node.
const NodeID graft.ID = "adapter.cache.local"

// Factory opens local caches.
type Factory struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(fsys ports.FileSystem, logger ports.Logger) *Factory {
	return &Factory{fs: fsys, logger: logger}
}

// Open opens the cache stored in dir.
func (f *Factory) Open(dir string) (*Store, error) {
	return NewStore(dir, f.fs, f.logger)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(fsys, log), nil
		},
	})
}
