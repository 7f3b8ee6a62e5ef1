package ports

import "go.trai.ch/noderun/internal/core/domain"

// GraphLoader reads a build graph file.
//
//go:generate mockgen -source=graph_loader.go -destination=mocks/mock_graph_loader.go -package=mocks
type GraphLoader interface {
	// Load reads, validates and decodes the graph file at path.
	Load(path string) (*domain.Plan, error)
}
