package runner_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/engine/runner"
)

const noisyStderr = "\x1b[1;31merror:\x1b[0m /src/lib/a.c:3: expected ';'\r\n" +
	"ar: libfoo.a has no symbols\n" +
	"Microsoft (R) Library Manager Version 14.0\n" +
	"note: output written to /build/root/obj/a.o\n" +
	"note: toolchain /tools/clang/bin/cc\n" +
	"note: resource /res/sdk/include"

func testPatterns() *domain.Patterns {
	return domain.NewPatterns(map[string]string{
		domain.SourceRoot:   "/src",
		domain.BuildRoot:    "/build/root",
		domain.ToolRoot:     "/tools",
		domain.ResourceRoot: "/res",
	})
}

func TestFixOutput(t *testing.T) {
	tests := []struct {
		name       string
		maskRoots  bool
		goldenName string
	}{
		{name: "plain", goldenName: "fix_output_plain"},
		{name: "masked roots", maskRoots: true, goldenName: "fix_output_masked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runner.FixOutput(noisyStderr, testPatterns(), tt.maskRoots)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, []byte(out))
		})
	}
}

func TestFixOutput_EmptyRootsAreNotMasked(t *testing.T) {
	p := domain.NewPatterns(map[string]string{domain.SourceRoot: "/src"})
	assert.Equal(t, "$(SOURCE_ROOT)/a.c and /elsewhere", runner.FixOutput("/src/a.c and /elsewhere", p, true))
	assert.Empty(t, runner.FixOutput("", p, true))
}

func TestQuoteCommand(t *testing.T) {
	got := runner.QuoteCommand(
		map[string]string{"LANG": "C", "CFLAGS": "-O2 -g"},
		[]string{"cc", "-DNAME='x'", "", "a.c"},
	)
	assert.Equal(t, `'CFLAGS=-O2 -g' LANG=C cc '-DNAME='"'"'x'"'"'' '' a.c`, got)
}
