package ports

import "go.trai.ch/noderun/internal/core/domain"

// ConfigLoader defines the interface for loading the runner configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds noderun.yaml walking up from cwd and returns it with defaults applied.
	// Without a file the defaults rooted at cwd are returned.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to the directory holding noderun.yaml.
	DiscoverRoot(cwd string) (string, error)
}
