// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/noderun/internal/adapters/buildroot"
	_ "go.trai.ch/noderun/internal/adapters/buildtime"
	_ "go.trai.ch/noderun/internal/adapters/cas"
	_ "go.trai.ch/noderun/internal/adapters/config"
	_ "go.trai.ch/noderun/internal/adapters/display"
	_ "go.trai.ch/noderun/internal/adapters/distcache"
	_ "go.trai.ch/noderun/internal/adapters/fs"
	_ "go.trai.ch/noderun/internal/adapters/fuse"
	_ "go.trai.ch/noderun/internal/adapters/graph"
	_ "go.trai.ch/noderun/internal/adapters/logger"
	_ "go.trai.ch/noderun/internal/adapters/metrics"
	_ "go.trai.ch/noderun/internal/adapters/popen"
	_ "go.trai.ch/noderun/internal/adapters/remote"
	_ "go.trai.ch/noderun/internal/adapters/telemetry"
	_ "go.trai.ch/noderun/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/noderun/internal/app"
)
