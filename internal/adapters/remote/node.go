package remote

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/logger"
	"go.trai.ch/noderun/internal/adapters/metrics"
	"go.trai.ch/noderun/internal/core/ports"
)

// NodeID is the unique identifier for the remote executor connector Graft node.
const NodeID graft.ID = "adapter.executor.remote"

func init() {
	graft.Register(graft.Node[*Connector]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, metrics.NodeID},
		Run: func(ctx context.Context) (*Connector, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			m, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}
			return NewConnector(log, m)
		},
	})
}
