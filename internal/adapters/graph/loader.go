// Package graph loads build graph files.
package graph

import (
	_ "embed"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

const schemaURL = "graph.json"

//go:embed schema.json
var schemaJSON string

// maxReportedViolations bounds the schema violations attached to an error.
const maxReportedViolations = 5

// file is the decoded shape of a graph file.
type file struct {
	Conf   domain.GraphConf `json:"conf"`
	Graph  []*domain.Node   `json:"graph"`
	Result []string         `json:"result"`
}

// Loader implements ports.GraphLoader for JSON graph files.
type Loader struct {
	schema *jsonschema.Schema
	logger ports.Logger
}

var _ ports.GraphLoader = (*Loader)(nil)

// NewLoader compiles the embedded graph schema.
func NewLoader(logger ports.Logger) (*Loader, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, zerr.Wrap(err, "add graph schema")
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, zerr.Wrap(err, "compile graph schema")
	}
	return &Loader{schema: schema, logger: logger}, nil
}

// Load reads, validates and decodes the graph file at path.
func (l *Loader) Load(path string) (*domain.Plan, error) {
	// #nosec G304 -- path is the graph file named on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrGraphNotFound.Error()), "path", path)
	}
	return l.decode(path, data)
}

func (l *Loader) decode(path string, data []byte) (*domain.Plan, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrGraphInvalid.Error()), "path", path)
	}
	if err := l.schema.Validate(doc); err != nil {
		return nil, zerr.With(zerr.Wrap(describe(err), domain.ErrGraphInvalid.Error()), "path", path)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrGraphInvalid.Error()), "path", path)
	}

	g := domain.NewGraph()
	for _, n := range f.Graph {
		if err := g.AddNode(n); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}
	for _, uid := range f.Result {
		if _, ok := g.Node(uid); !ok {
			return nil, zerr.With(zerr.With(domain.ErrNodeNotFound, "uid", uid), "path", path)
		}
	}
	g.SetResults(f.Result)
	if err := g.Validate(); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.logger.Debug("graph loaded", "path", path, "nodes", g.NodeCount(), "results", len(f.Result))
	return &domain.Plan{Graph: g, Conf: f.Conf}, nil
}

// describe flattens a schema validation error into its leaf violations.
func describe(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	var lines []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			lines = append(lines, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)

	if len(lines) > maxReportedViolations {
		lines = append(lines[:maxReportedViolations], "...")
	}
	return zerr.New(strings.Join(lines, "; "))
}
