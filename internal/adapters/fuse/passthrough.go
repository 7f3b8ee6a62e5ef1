// Package fuse provides the sandbox manager nodes execute under.
package fuse

import (
	"context"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
)

// Passthrough implements ports.FuseManager without mounting anything: nodes see the real
// source root. The sandbox is traced so its duration shows next to the node.
type Passthrough struct {
	tracer ports.Tracer
}

var _ ports.FuseManager = (*Passthrough)(nil)

// NewPassthrough creates a Passthrough.
func NewPassthrough(tracer ports.Tracer) *Passthrough {
	return &Passthrough{tracer: tracer}
}

// Manage runs fn inside a sandbox span.
func (p *Passthrough) Manage(ctx context.Context, node *domain.Node, patterns *domain.Patterns, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "sandbox",
		ports.WithAttribute("node.uid", node.UID),
		ports.WithAttribute("source_root", patterns.SourceRoot()),
	)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
