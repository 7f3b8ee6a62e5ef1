package domain

// Resource binds a macro name to an absolute path, e.g. a toolchain directory.
type Resource struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

// GraphConf is the configuration section of a graph file.
type GraphConf struct {
	Resources []Resource `json:"resources,omitempty"`
	KeepOn    bool       `json:"keepon,omitempty"`
}

// Plan is a decoded graph file: the validated graph plus its configuration.
type Plan struct {
	Graph *Graph
	Conf  GraphConf
}

// Patterns returns the resource macros of the plan merged over roots.
func (p *Plan) Patterns(roots map[string]string) *Patterns {
	values := make(map[string]string, len(roots)+len(p.Conf.Resources))
	for k, v := range roots {
		values[k] = v
	}
	for _, r := range p.Conf.Resources {
		values[r.Pattern] = r.Path
	}
	return NewPatterns(values)
}
