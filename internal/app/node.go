package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/adapters/buildroot"
	"go.trai.ch/noderun/internal/adapters/buildtime"
	"go.trai.ch/noderun/internal/adapters/cas"
	"go.trai.ch/noderun/internal/adapters/config"
	"go.trai.ch/noderun/internal/adapters/display"
	"go.trai.ch/noderun/internal/adapters/distcache"
	"go.trai.ch/noderun/internal/adapters/fs"
	"go.trai.ch/noderun/internal/adapters/fuse"
	"go.trai.ch/noderun/internal/adapters/graph"
	"go.trai.ch/noderun/internal/adapters/logger"
	"go.trai.ch/noderun/internal/adapters/metrics"
	"go.trai.ch/noderun/internal/adapters/popen"
	"go.trai.ch/noderun/internal/adapters/remote"
	"go.trai.ch/noderun/internal/adapters/telemetry"
	"go.trai.ch/noderun/internal/adapters/watcher"
	"go.trai.ch/noderun/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
	// ProvisionerNodeID is the unique identifier for the adapter provisioner Graft node.
	ProvisionerNodeID graft.ID = "app.provisioner"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[ports.Provisioner]{
		ID:        ProvisionerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			popen.NodeID,
			remote.NodeID,
			cas.NodeID,
			distcache.NodeID,
			buildtime.NodeID,
			buildroot.NodeID,
			fuse.NodeID,
			logger.NodeID,
		},
		Run: runProvisionerNode,
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			graph.NodeID,
			ProvisionerNodeID,
			fs.NodeID,
			logger.NodeID,
			telemetry.NodeID,
			metrics.NodeID,
			metrics.ServerNodeID,
			watcher.NodeID,
			display.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runProvisionerNode(ctx context.Context) (ports.Provisioner, error) {
	popenFactory, err := graft.Dep[*popen.Factory](ctx)
	if err != nil {
		return nil, err
	}

	connector, err := graft.Dep[*remote.Connector](ctx)
	if err != nil {
		return nil, err
	}

	cacheFactory, err := graft.Dep[*cas.Factory](ctx)
	if err != nil {
		return nil, err
	}

	distFactory, err := graft.Dep[*distcache.Factory](ctx)
	if err != nil {
		return nil, err
	}

	buildTimeFactory, err := graft.Dep[*buildtime.Factory](ctx)
	if err != nil {
		return nil, err
	}

	rootsFactory, err := graft.Dep[*buildroot.Factory](ctx)
	if err != nil {
		return nil, err
	}

	fuseManager, err := graft.Dep[ports.FuseManager](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return NewProvisioner(popenFactory, connector, cacheFactory, distFactory, buildTimeFactory, rootsFactory, fuseManager, log), nil
}

func runAppNode(ctx context.Context) (*App, error) {
	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	graphLoader, err := graft.Dep[ports.GraphLoader](ctx)
	if err != nil {
		return nil, err
	}

	provisioner, err := graft.Dep[ports.Provisioner](ctx)
	if err != nil {
		return nil, err
	}

	fsys, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	server, err := graft.Dep[ports.MetricsServer](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	displays, err := graft.Dep[*display.Factory](ctx)
	if err != nil {
		return nil, err
	}

	return New(configLoader, graphLoader, provisioner, fsys, log, tracer, recorder, server, fileWatcher, displays), nil
}
