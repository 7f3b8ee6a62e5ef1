package fuse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/fuse"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type spanKey struct{}

func TestPassthrough_Manage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "success"},
		{name: "failure", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			span := mocks.NewMockSpan(ctrl)
			span.EXPECT().End()
			if tt.err != nil {
				span.EXPECT().RecordError(tt.err)
			}
			tracer := mocks.NewMockTracer(ctrl)
			tracer.EXPECT().Start(gomock.Any(), "sandbox", gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, _ string, opts ...ports.SpanOption) (context.Context, ports.Span) {
					var cfg ports.SpanConfig
					for _, o := range opts {
						o(&cfg)
					}
					assert.Equal(t, "a", cfg.Attributes["node.uid"])
					assert.Equal(t, "/src", cfg.Attributes["source_root"])
					return context.WithValue(ctx, spanKey{}, true), span
				})

			p := fuse.NewPassthrough(tracer)
			patterns := domain.NewPatterns(map[string]string{domain.SourceRoot: "/src"})

			called := false
			err := p.Manage(t.Context(), &domain.Node{UID: "a"}, patterns, func(ctx context.Context) error {
				called = true
				assert.Equal(t, true, ctx.Value(spanKey{}))
				return tt.err
			})
			assert.True(t, called)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
		})
	}
}
