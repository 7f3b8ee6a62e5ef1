package display_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/noderun/internal/adapters/display"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/ui/output"
)

func newRenderer(opts display.Options) (*display.Renderer, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	opts.Color = output.ColorNever
	return display.NewRenderer(&stdout, &stderr, opts), &stdout, &stderr
}

func compileNode() *domain.Node {
	return &domain.Node{
		UID:     "compile",
		Outputs: []string{"$(BUILD_ROOT)/main.o"},
		KV:      map[string]string{domain.NodeKindKey: "CC"},
	}
}

func TestRenderer_Emit(t *testing.T) {
	r, stdout, stderr := newRenderer(display.Options{})

	r.Emit("first line\nsecond line\n")
	r.Emit("partial")

	assert.Equal(t, "first line\nsecond line\npartial\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_NodeFinished(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		opts       display.Options
		res        domain.NodeResult
		wantStderr string
		wantStdout string
	}{
		{
			name:       "success",
			res:        domain.NodeResult{UID: "compile", State: domain.StateDone},
			wantStderr: "[CC] ✓ compile $(BUILD_ROOT)/main.o\n",
		},
		{
			name:       "cache hit",
			res:        domain.NodeResult{UID: "compile", State: domain.StateCacheHit},
			wantStderr: "[CC] ~ compile $(BUILD_ROOT)/main.o\n",
		},
		{
			name: "failure prints stderr",
			res: domain.NodeResult{
				UID: "compile", State: domain.StateDone, ExitCode: 2,
				Stderr: "main.c:1: error\n", Tags: []string{domain.TagFailed},
			},
			wantStderr: "[CC] ✗ compile $(BUILD_ROOT)/main.o exit code 2 [FAILED]\n",
			wantStdout: "[CC] main.c:1: error\n",
		},
		{
			name: "failure with suppressed stderr",
			opts: display.Options{DoNotOutputStderrs: true},
			res: domain.NodeResult{
				UID: "compile", State: domain.StateDone, ExitCode: 1, Stderr: "boom\n",
			},
			wantStderr: "[CC] ✗ compile $(BUILD_ROOT)/main.o exit code 1\n",
		},
		{
			name: "broken by deps",
			res: domain.NodeResult{
				UID: "compile", State: domain.StateBrokenByDeps, ExitCode: 1,
				Tags: []string{domain.TagBrokenByDeps},
			},
			wantStderr: "[CC] ! compile $(BUILD_ROOT)/main.o exit code 1 [BROKEN_BY_DEPS]\n",
		},
		{
			name: "timings and status",
			opts: display.Options{ShowTimings: true},
			res: domain.NodeResult{
				UID: "compile", State: domain.StateDone, Status: "linking",
				Start: start, Finish: start.Add(1500 * time.Millisecond),
			},
			wantStderr: "[CC] ✓ compile $(BUILD_ROOT)/main.o in 1.5s (linking)\n",
		},
		{
			name:       "successful stderr is quiet",
			res:        domain.NodeResult{UID: "compile", State: domain.StateDone, Stderr: "warning\n"},
			wantStderr: "[CC] ✓ compile $(BUILD_ROOT)/main.o\n",
		},
		{
			name:       "successful stderr in verbose mode",
			opts:       display.Options{Verbose: true},
			res:        domain.NodeResult{UID: "compile", State: domain.StateDone, Stderr: "warning\n"},
			wantStderr: "[CC] ✓ compile $(BUILD_ROOT)/main.o\n",
			wantStdout: "[CC] warning\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, stdout, stderr := newRenderer(tt.opts)
			r.NodeFinished(compileNode(), tt.res)

			assert.Equal(t, tt.wantStderr, stderr.String())
			assert.Equal(t, tt.wantStdout, stdout.String())
		})
	}
}

func TestRenderer_NodeFinished_UnknownKind(t *testing.T) {
	r, _, stderr := newRenderer(display.Options{})
	r.NodeFinished(&domain.Node{UID: "x"}, domain.NodeResult{UID: "x", State: domain.StateDone})

	assert.True(t, strings.HasPrefix(stderr.String(), "[??] "))
}

func TestRenderer_Partial(t *testing.T) {
	res := domain.PartialResult{UID: "compile", Status: 0, BuildRoot: "/b/000001", Files: []string{"/b/000001/main.o"}}

	quiet, _, quietErr := newRenderer(display.Options{})
	quiet.Partial(res)
	assert.Empty(t, quietErr.String())

	verbose, _, verboseErr := newRenderer(display.Options{Verbose: true})
	verbose.Partial(res)
	assert.Equal(t, "[compile] status 0, 1 file(s) in /b/000001\n", verboseErr.String())
}

func TestRenderer_Summary(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, _, stderr := newRenderer(display.Options{})
		r.NodeFinished(compileNode(), domain.NodeResult{UID: "compile", State: domain.StateCacheHit})
		stderr.Reset()

		r.Summary(3, nil)
		assert.Equal(t, "✓ Built 3 node(s), 1 restored from cache\n", stderr.String())
	})

	t.Run("failures", func(t *testing.T) {
		r, _, stderr := newRenderer(display.Options{})
		r.Summary(4, map[string]string{
			"link":    "ld: undefined reference to `main'\r\n\ncollect2: error\n",
			"compile": "main.c:1: error: expected ';'\n",
		})

		g := goldie.New(t)
		g.Assert(t, "summary_failures", stderr.Bytes())
	})
}
