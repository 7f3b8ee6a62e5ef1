package popen

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/logger"
	"go.trai.ch/noderun/internal/adapters/metrics"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
)

// NodeID is the unique identifier for the popen factory Graft node.
const NodeID graft.ID = "adapter.executor.popen"

// Factory creates popen executors for a configuration.
type Factory struct {
	logger  ports.Logger
	metrics ports.Metrics
}

// NewFactory creates a Factory.
func NewFactory(logger ports.Logger, metrics ports.Metrics) *Factory {
	return &Factory{logger: logger, metrics: metrics}
}

// New returns an executor configured by cfg.
func (f *Factory) New(cfg domain.ExecutorConfig) *Executor {
	return NewExecutor(cfg, f.logger, f.metrics)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, metrics.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			m, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log, m), nil
		},
	})
}
