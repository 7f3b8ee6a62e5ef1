package display

import (
	"context"
	"io"

	"github.com/grindlemire/graft"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/ui/output"
)

// NodeID is the unique identifier for the display factory Graft node.
const NodeID graft.ID = "adapter.display"

// Factory creates renderers once the configuration is known.
type Factory struct {
	stdout io.Writer
	stderr io.Writer
}

// NewFactory creates a Factory writing to stdout and stderr. Nil writers mean the process streams.
func NewFactory(stdout, stderr io.Writer) *Factory {
	return &Factory{stdout: stdout, stderr: stderr}
}

// Open creates a renderer configured from cfg.
func (f *Factory) Open(cfg *domain.Config, color output.ColorMode) *Renderer {
	return NewRenderer(f.stdout, f.stderr, Options{
		ShowTimings:        cfg.ShowTimings,
		DoNotOutputStderrs: cfg.DoNotOutputStderrs,
		Verbose:            cfg.Verbose,
		Color:              color,
	})
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Factory, error) {
			return NewFactory(nil, nil), nil
		},
	})
}
