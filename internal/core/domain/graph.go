// Package domain contains the core domain models of the node execution engine.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// Graph is the resolved build graph: nodes keyed by uid plus the requested result uids.
type Graph struct {
	nodes          map[string]*Node
	order          []string
	dependents     map[string][]string
	results        []string
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		dependents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// It returns an error if a node with the same uid already exists.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.nodes[n.UID]; exists {
		return zerr.With(ErrNodeAlreadyExists, "uid", n.UID)
	}
	g.nodes[n.UID] = n
	g.order = append(g.order, n.UID)
	return nil
}

// SetResults sets the uids the build is asked to produce.
// When empty, every node is a result.
func (g *Graph) SetResults(uids []string) {
	g.results = slices.Clone(uids)
}

// Results returns the requested result uids.
func (g *Graph) Results() []string {
	if len(g.results) == 0 {
		return slices.Clone(g.order)
	}
	return slices.Clone(g.results)
}

// Node returns the node with the given uid.
func (g *Graph) Node(uid string) (*Node, bool) {
	n, ok := g.nodes[uid]
	return n, ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// DepNodes returns the dependency nodes of n in declared order.
func (g *Graph) DepNodes(n *Node) []*Node {
	deps := make([]*Node, 0, len(n.Deps))
	for _, uid := range n.Deps {
		if d, ok := g.nodes[uid]; ok {
			deps = append(deps, d)
		}
	}
	return deps
}

// Dependents returns the uids of nodes that depend on uid.
func (g *Graph) Dependents(uid string) []string {
	return g.dependents[uid]
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order, the dependents index and node refcounts.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.nodes))
	g.dependents = make(map[string][]string, len(g.nodes))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(u string) error
	visit = func(u string) error {
		visited[u] = 1
		path = append(path, u)

		node, exists := g.nodes[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u)
		}

		for _, dep := range node.Deps {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	// Declaration order keeps the walk deterministic.
	for _, uid := range g.order {
		if visited[uid] == 0 {
			if err := visit(uid); err != nil {
				return err
			}
		}
	}

	for _, uid := range g.order {
		g.nodes[uid].Refcount = 0
	}
	for _, uid := range g.order {
		for _, dep := range g.nodes[uid].Deps {
			g.dependents[dep] = append(g.dependents[dep], uid)
			g.nodes[dep].Refcount++
		}
	}
	for _, uid := range g.Results() {
		if n, ok := g.nodes[uid]; ok {
			n.Refcount++
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []string, dep string) error {
	cyclePath := ""
	startIdx := slices.Index(path, dep)
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i] + " -> "
	}
	cyclePath += dep
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// Walk returns an iterator that yields nodes in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, uid := range g.executionOrder {
			if !yield(g.nodes[uid]) {
				return
			}
		}
	}
}

// Closure returns the uids needed to build the given targets, in execution order.
func (g *Graph) Closure(targets []string) ([]string, error) {
	needed := make(map[string]bool)
	queue := slices.Clone(targets)
	for len(queue) > 0 {
		uid := queue[0]
		queue = queue[1:]
		if needed[uid] {
			continue
		}
		node, ok := g.nodes[uid]
		if !ok {
			return nil, zerr.With(ErrNodeNotFound, "uid", uid)
		}
		needed[uid] = true
		queue = append(queue, node.Deps...)
	}

	out := make([]string, 0, len(needed))
	for node := range g.Walk() {
		if needed[node.UID] {
			out = append(out, node.UID)
		}
	}
	return out, nil
}
