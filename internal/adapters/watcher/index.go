package watcher

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/noderun/internal/core/domain"
)

// Digests of paths that are not regular files.
const (
	missingDigest uint64 = 0
	dirDigest     uint64 = 1
)

// Change is the effect of a batch of changed paths on a loaded plan.
type Change struct {
	// Graph is set when the graph file itself changed.
	Graph bool
	// Nodes are the uids of nodes reading a changed input, sorted.
	Nodes []string
}

// Empty reports whether the batch changed nothing the plan depends on.
func (c Change) Empty() bool {
	return !c.Graph && len(c.Nodes) == 0
}

// Index maps watched paths to the nodes reading them and remembers their content digests,
// so that events which leave the content untouched do not trigger a rebuild.
type Index struct {
	mu        sync.Mutex
	graphPath string
	inputs    map[string][]string
	digests   map[string]uint64
}

// NewIndex indexes the resolved inputs of every node in plan.
// Inputs that still contain unknown macros after filling are not watched.
func NewIndex(plan *domain.Plan, patterns *domain.Patterns, graphPath string) *Index {
	x := &Index{
		graphPath: filepath.Clean(graphPath),
		inputs:    make(map[string][]string),
		digests:   make(map[string]uint64),
	}

	for n := range plan.Graph.Walk() {
		for _, in := range n.Inputs {
			p := patterns.Fill(in)
			if strings.Contains(p, "$(") || !filepath.IsAbs(p) {
				continue
			}
			p = filepath.Clean(p)
			if !slices.Contains(x.inputs[p], n.UID) {
				x.inputs[p] = append(x.inputs[p], n.UID)
			}
		}
	}

	x.digests[x.graphPath] = digest(x.graphPath)
	for p := range x.inputs {
		x.digests[p] = digest(p)
	}
	return x
}

// Affected returns what the changed paths invalidate. Paths whose content digest is unchanged
// since the last call are ignored.
func (x *Index) Affected(paths []string) Change {
	x.mu.Lock()
	defer x.mu.Unlock()

	var change Change
	for _, p := range paths {
		p = filepath.Clean(p)

		isGraph := p == x.graphPath
		nodes := x.readers(p)
		if !isGraph && len(nodes) == 0 {
			continue
		}

		d := digest(p)
		if prev, seen := x.digests[p]; seen && prev == d && d != dirDigest {
			continue
		}
		x.digests[p] = d

		change.Graph = change.Graph || isGraph
		change.Nodes = append(change.Nodes, nodes...)
	}

	slices.Sort(change.Nodes)
	change.Nodes = slices.Compact(change.Nodes)
	return change
}

// readers returns the nodes reading p directly or through an input directory holding p.
func (x *Index) readers(p string) []string {
	var uids []string
	for dir := p; ; dir = filepath.Dir(dir) {
		uids = append(uids, x.inputs[dir]...)
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return uids
}

// digest hashes the content of a regular file. Directories and missing paths get fixed digests.
func digest(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return missingDigest
	}
	if info.IsDir() {
		return dirDigest
	}

	// #nosec G304 -- path is a watched node input
	f, err := os.Open(path)
	if err != nil {
		return missingDigest
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return missingDigest
	}
	return h.Sum64()
}
