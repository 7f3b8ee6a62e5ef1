package ports

import (
	"context"

	"go.trai.ch/noderun/internal/core/domain"
)

// FuseManager mounts the sandbox a node executes in.
//
//go:generate mockgen -source=fuse.go -destination=mocks/mock_fuse.go -package=mocks
type FuseManager interface {
	// Manage holds the mount for node while fn runs and releases it on every exit path.
	Manage(ctx context.Context, node *domain.Node, patterns *domain.Patterns, fn func(context.Context) error) error
}
