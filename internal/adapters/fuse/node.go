package fuse

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/telemetry"
	"go.trai.ch/noderun/internal/core/ports"
)

// NodeID is the unique identifier for the sandbox manager Graft node.
const NodeID graft.ID = "adapter.fuse"

func init() {
	graft.Register(graft.Node[ports.FuseManager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{telemetry.NodeID},
		Run: func(ctx context.Context) (ports.FuseManager, error) {
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewPassthrough(tracer), nil
		},
	})
}
