package domain

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Well-known macro names.
const (
	SourceRoot    = "SOURCE_ROOT"
	BuildRoot     = "BUILD_ROOT"
	ToolRoot      = "TOOL_ROOT"
	ResourceRoot  = "RESOURCE_ROOT"
	TestsDataRoot = "TESTS_DATA_ROOT"
)

var macroRe = regexp.MustCompile(`\$\(([A-Za-z_][A-Za-z0-9_]*)\)`)

// Macro renders a macro reference, e.g. Macro("BUILD_ROOT") is "$(BUILD_ROOT)".
func Macro(name string) string {
	return "$(" + name + ")"
}

// Patterns is the macro substitution context of a node.
type Patterns struct {
	values map[string]string
}

// NewPatterns creates a pattern set from name to value pairs.
func NewPatterns(values map[string]string) *Patterns {
	p := &Patterns{values: make(map[string]string, len(values))}
	for k, v := range values {
		if v != "" {
			p.values[k] = v
		}
	}
	return p
}

// Sub returns an independent copy of p.
func (p *Patterns) Sub() *Patterns {
	return &Patterns{values: maps.Clone(p.values)}
}

// Set assigns a macro value.
func (p *Patterns) Set(name, value string) {
	p.values[name] = value
}

// Get returns a macro value.
func (p *Patterns) Get(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Fill replaces every known macro in s. Unknown macros are left untouched.
func (p *Patterns) Fill(s string) string {
	if !strings.Contains(s, "$(") {
		return s
	}
	return macroRe.ReplaceAllStringFunc(s, func(m string) string {
		name := macroRe.FindStringSubmatch(m)[1]
		if v, ok := p.values[name]; ok {
			return v
		}
		return m
	})
}

// FillAll fills every element of ss.
func (p *Patterns) FillAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = p.Fill(s)
	}
	return out
}

// FillCommand fills arguments, working directory, environment values and redirections of c.
func (p *Patterns) FillCommand(c Command) Command {
	out := Command{
		Args:   p.FillAll(c.Args),
		Cwd:    p.Fill(c.Cwd),
		Stdout: p.Fill(c.Stdout),
		Stderr: p.Fill(c.Stderr),
	}
	if c.Env != nil {
		out.Env = make(map[string]string, len(c.Env))
		for k, v := range c.Env {
			out.Env[k] = p.Fill(v)
		}
	}
	return out
}

// Unresolved returns the sorted names of macros used in ss that have no value.
// BUILD_ROOT is never reported since it is bound per task.
func (p *Patterns) Unresolved(ss ...string) []string {
	seen := make(map[string]struct{})
	for _, s := range ss {
		for _, m := range macroRe.FindAllStringSubmatch(s, -1) {
			name := m[1]
			if name == BuildRoot {
				continue
			}
			if _, ok := p.values[name]; !ok {
				seen[name] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// NodeStrings returns every string of n that may contain macros: command fields and inputs.
func NodeStrings(n *Node) []string {
	var ss []string
	for _, c := range n.Commands {
		ss = append(ss, c.Args...)
		ss = append(ss, c.Cwd, c.Stdout, c.Stderr)
		for _, v := range c.Env {
			ss = append(ss, v)
		}
	}
	return append(ss, n.Inputs...)
}

func (p *Patterns) root(name string) string {
	return p.values[name]
}

// SourceRoot returns the SOURCE_ROOT value.
func (p *Patterns) SourceRoot() string { return p.root(SourceRoot) }

// BuildRoot returns the BUILD_ROOT value.
func (p *Patterns) BuildRoot() string { return p.root(BuildRoot) }

// ToolRoot returns the TOOL_ROOT value.
func (p *Patterns) ToolRoot() string { return p.root(ToolRoot) }

// ResourceRoot returns the RESOURCE_ROOT value.
func (p *Patterns) ResourceRoot() string { return p.root(ResourceRoot) }

// TestsDataRoot returns the TESTS_DATA_ROOT value.
func (p *Patterns) TestsDataRoot() string { return p.root(TestsDataRoot) }
