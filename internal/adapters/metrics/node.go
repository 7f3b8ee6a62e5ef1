package metrics

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/logger"
	"go.trai.ch/noderun/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the metrics recorder Graft node.
	NodeID graft.ID = "adapter.metrics"
	// ServerNodeID is the unique identifier for the metrics server Graft node.
	ServerNodeID graft.ID = "adapter.metrics.server"
)

// recorderNodeID holds the concrete recorder shared by both public nodes.
const recorderNodeID graft.ID = "adapter.metrics.recorder"

func init() {
	graft.Register(graft.Node[*Recorder]{
		ID:        recorderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Recorder, error) {
			return NewRecorder(), nil
		},
	})

	graft.Register(graft.Node[ports.Metrics]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{recorderNodeID},
		Run: func(ctx context.Context) (ports.Metrics, error) {
			rec, err := graft.Dep[*Recorder](ctx)
			if err != nil {
				return nil, err
			}
			return rec, nil
		},
	})

	graft.Register(graft.Node[ports.MetricsServer]{
		ID:        ServerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{recorderNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.MetricsServer, error) {
			rec, err := graft.Dep[*Recorder](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewServer(rec, log), nil
		},
	})
}
