package app

import (
	"context"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
)

// Invalidate exposes invalidate for testing.
func (a *App) Invalidate(ctx context.Context, cache ports.Cache, g *domain.Graph, uids []string) {
	a.invalidate(ctx, cache, g, uids)
}

// Within exposes within for testing.
var Within = within
