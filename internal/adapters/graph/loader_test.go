package graph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/graph"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *graph.Loader {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	l, err := graph.NewLoader(logger)
	require.NoError(t, err)
	return l
}

func writeGraph(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

const compileLink = `{
  "conf": {"resources": [{"pattern": "CC", "path": "/opt/cc"}], "keepon": true},
  "graph": [
    {
      "uid": "compile",
      "self_uid": "compile-self",
      "static_uid": "compile-static",
      "inputs": ["$(SOURCE_ROOT)/main.c"],
      "outputs": ["$(BUILD_ROOT)/main.o"],
      "cmd_args": ["$(CC)/bin/cc", "-c", "main.c"],
      "cwd": "$(SOURCE_ROOT)",
      "env": {"LANG": "C"},
      "requirements": {"cpu": 2, "network": "restricted"},
      "kv": {"p": "CC"}
    },
    {
      "uid": "link",
      "self_uid": "link-self",
      "outputs": ["$(BUILD_ROOT)/app"],
      "cmds": [{"cmd_args": ["ld", "-o", "app", "main.o"], "cwd": "$(BUILD_ROOT)"}],
      "requirements": {"cpu": "all"},
      "kv": {"p": "LD"},
      "deps": ["compile"],
      "cache": false
    }
  ],
  "result": ["link"]
}`

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	plan, err := newLoader(t).Load(writeGraph(t, compileLink))
	require.NoError(t, err)

	assert.True(t, plan.Conf.KeepOn)
	assert.Equal(t, []domain.Resource{{Pattern: "CC", Path: "/opt/cc"}}, plan.Conf.Resources)
	assert.Equal(t, []string{"link"}, plan.Graph.Results())
	assert.Equal(t, 2, plan.Graph.NodeCount())

	compile, ok := plan.Graph.Node("compile")
	require.True(t, ok)
	require.Len(t, compile.Commands, 1)
	assert.Equal(t, []string{"$(CC)/bin/cc", "-c", "main.c"}, compile.Commands[0].Args)
	assert.Equal(t, "$(SOURCE_ROOT)", compile.Commands[0].Cwd)
	assert.Equal(t, map[string]string{"LANG": "C"}, compile.Commands[0].Env)
	assert.Equal(t, domain.CPURequirement("2"), compile.Requirements.CPU)
	assert.Equal(t, "restricted", compile.Requirements.Network)
	assert.True(t, compile.Cacheable())
	assert.Equal(t, "compile-static", compile.StaticUID)

	link, ok := plan.Graph.Node("link")
	require.True(t, ok)
	assert.Equal(t, domain.CPURequirement("all"), link.Requirements.CPU)
	assert.False(t, link.Cacheable())
	assert.Equal(t, []string{"link"}, plan.Graph.Dependents("compile"))

	patterns := plan.Patterns(map[string]string{domain.SourceRoot: "/src"})
	assert.Equal(t, "/opt/cc/bin/cc", patterns.Fill("$(CC)/bin/cc"))
}

func TestLoader_Load_Aliases(t *testing.T) {
	t.Parallel()

	plan, err := newLoader(t).Load(writeGraph(t, `{"graph": [
		{"uid": "a", "commands": [{"cmd_args": ["true"]}], "cacheable": false}
	]}`))
	require.NoError(t, err)

	a, ok := plan.Graph.Node("a")
	require.True(t, ok)
	require.Len(t, a.Commands, 1)
	assert.Equal(t, []string{"true"}, a.Commands[0].Args)
	assert.False(t, a.Cacheable())
	assert.Equal(t, []string{"a"}, plan.Graph.Results(), "every node is a result when none are named")
}

func TestLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		errContains []string
	}{
		{
			name:        "Not JSON",
			content:     `{"graph": [`,
			errContains: []string{domain.ErrGraphInvalid.Error()},
		},
		{
			name:        "Missing Graph",
			content:     `{"result": []}`,
			errContains: []string{domain.ErrGraphInvalid.Error(), "graph"},
		},
		{
			name:        "Node Without UID",
			content:     `{"graph": [{"outputs": ["a"]}]}`,
			errContains: []string{domain.ErrGraphInvalid.Error(), "/graph/0"},
		},
		{
			name:        "Empty Command",
			content:     `{"graph": [{"uid": "a", "cmds": [{"cmd_args": []}]}]}`,
			errContains: []string{domain.ErrGraphInvalid.Error(), "/graph/0/cmds/0/cmd_args"},
		},
		{
			name:        "Bad Requirement Type",
			content:     `{"graph": [{"uid": "a", "requirements": {"cpu": true}}]}`,
			errContains: []string{domain.ErrGraphInvalid.Error(), "/graph/0/requirements/cpu"},
		},
		{
			name:        "Duplicate UID",
			content:     `{"graph": [{"uid": "a"}, {"uid": "a"}]}`,
			errContains: []string{domain.ErrNodeAlreadyExists.Error()},
		},
		{
			name:        "Unknown Result",
			content:     `{"graph": [{"uid": "a"}], "result": ["b"]}`,
			errContains: []string{domain.ErrNodeNotFound.Error()},
		},
		{
			name:        "Missing Dependency",
			content:     `{"graph": [{"uid": "a", "deps": ["ghost"]}]}`,
			errContains: []string{domain.ErrMissingDependency.Error()},
		},
		{
			name:        "Cycle",
			content:     `{"graph": [{"uid": "a", "deps": ["b"]}, {"uid": "b", "deps": ["a"]}]}`,
			errContains: []string{domain.ErrCycleDetected.Error()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := newLoader(t).Load(writeGraph(t, tt.content))
			require.Error(t, err)
			for _, s := range tt.errContains {
				assert.ErrorContains(t, err, s)
			}
			assert.Nil(t, plan)
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := newLoader(t).Load(filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorContains(t, err, domain.ErrGraphNotFound.Error())
}
