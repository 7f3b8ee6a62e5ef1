package buildroot

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

// Root is one build root of a Set.
type Root struct {
	set         *Set
	path        string
	computeHash bool

	ok atomic.Bool

	mu         sync.Mutex
	outputs    []string
	initial    map[string]bool
	dirOutputs []string
	refcount   int
	created    bool

	dirFilesOnce sync.Once
	dirFiles     []string
	dirFilesErr  error
}

var _ ports.BuildRoot = (*Root)(nil)

func newRoot(s *Set, path string, outputs []string, refcount int, dirOutputs []string, computeHash bool) *Root {
	r := &Root{
		set:         s,
		path:        path,
		computeHash: computeHash,
		initial:     make(map[string]bool, len(outputs)),
		refcount:    refcount,
	}
	for _, o := range outputs {
		abs := r.expand(o)
		r.outputs = append(r.outputs, abs)
		r.initial[abs] = true
	}
	for _, d := range dirOutputs {
		r.dirOutputs = append(r.dirOutputs, r.expand(d))
	}
	return r
}

func (r *Root) expand(p string) string {
	return strings.ReplaceAll(p, domain.Macro(domain.BuildRoot), r.path)
}

// Path returns the directory of the root.
func (r *Root) Path() string { return r.path }

// OK reports whether the root passed Validate.
func (r *Root) OK() bool { return r.ok.Load() }

// Create creates the directory.
func (r *Root) Create() error {
	r.mu.Lock()
	r.created = true
	r.mu.Unlock()

	if err := os.MkdirAll(r.path, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildRootCreateFailed.Error()), "path", r.path)
	}
	return nil
}

// AddOutput registers an additional output.
func (r *Root) AddOutput(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs = append(r.outputs, r.expand(path))
}

// Outputs returns the absolute paths of all outputs.
func (r *Root) Outputs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.outputs)
}

// Inc adds a reference.
func (r *Root) Inc() error {
	if r.set.opts.Keep {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refcount == 0 && r.created {
		return zerr.With(domain.ErrBuildRootRecreate, "path", r.path)
	}
	r.refcount++
	return nil
}

// Dec releases a reference and removes the directory with the last one.
func (r *Root) Dec() error {
	if r.set.opts.Keep {
		return nil
	}
	r.mu.Lock()
	r.refcount--
	n := r.refcount
	r.mu.Unlock()

	switch {
	case n < 0:
		return zerr.With(domain.ErrNegativeRefcount, "path", r.path)
	case n == 0:
		return r.set.fs.RemoveTree(r.path)
	}
	return nil
}

// Steal hard links the outputs into the directory into and releases one reference.
// Digest files are not linked: the stealing root computes its own.
func (r *Root) Steal(into string) (err error) {
	if !r.OK() {
		return zerr.With(zerr.Wrap(errors.New("build root is not validated"), domain.ErrStealFailed.Error()), "path", r.path)
	}
	defer func() {
		if decErr := r.Dec(); decErr != nil {
			err = errors.Join(err, decErr)
		}
	}()

	for _, out := range r.Outputs() {
		if strings.HasSuffix(out, domain.EmptyDirOutputsMetaName) {
			r.createEmptyDirs(into, out)
		}
		if strings.HasSuffix(out, domain.OutputDigestsFileName) {
			continue
		}
		rel, err := filepath.Rel(r.path, out)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStealFailed.Error()), "path", out)
		}
		if err := r.set.fs.HardlinkTree(out, filepath.Join(into, rel)); err != nil {
			if !r.initial[out] && errors.Is(err, fs.ErrNotExist) {
				r.set.logger.Warn("stolen dir output file is gone", "path", out)
				continue
			}
			return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrStealFailed.Error()), "from", r.path), "into", into)
		}
	}
	return nil
}

// Validate checks every output: it must be a regular file or a relative symlink to another
// output inside the root. It then checks content digests and the size limit.
func (r *Root) Validate() error {
	outputs := r.Outputs()
	for _, out := range outputs {
		info, err := os.Lstat(out)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrBuildRootIntegrity.Error()), "path", out)
		}
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			if err := r.validateSymlink(out, outputs); err != nil {
				return err
			}
		case !info.Mode().IsRegular():
			return zerr.With(zerr.With(domain.ErrBuildRootIntegrity, "path", out), "mode", info.Mode().String())
		}
	}

	if r.set.opts.ValidateContent && r.computeHash {
		if err := r.validateContent(); err != nil {
			return err
		}
	}
	if r.set.opts.MaxOutputSize > 0 {
		if err := validateSize(outputs, r.set.opts.MaxOutputSize); err != nil {
			return err
		}
	}

	r.ok.Store(true)
	return nil
}

func (r *Root) validateSymlink(out string, outputs []string) error {
	target, err := os.Readlink(out)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildRootIntegrity.Error()), "path", out)
	}
	if filepath.IsAbs(target) {
		return zerr.With(zerr.With(zerr.Wrap(errors.New("symlink output has an absolute target"), domain.ErrBuildRootIntegrity.Error()), "path", out), "target", target)
	}

	resolved, err := filepath.EvalSymlinks(out)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildRootIntegrity.Error()), "path", out)
	}
	root, err := filepath.EvalSymlinks(r.path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildRootIntegrity.Error()), "path", r.path)
	}
	if rel, err := filepath.Rel(root, resolved); err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return zerr.With(zerr.With(zerr.Wrap(errors.New("symlink output points outside the build root"), domain.ErrBuildRootIntegrity.Error()), "path", out), "target", target)
	}

	if !resolvesToOtherOutput(out, resolved, outputs) {
		return zerr.With(zerr.With(zerr.Wrap(errors.New("symlink output points to a file that is not an output"), domain.ErrBuildRootIntegrity.Error()), "path", out), "target", target)
	}
	return nil
}

// resolvesToOtherOutput reports whether real is the resolved path of an output other than link.
func resolvesToOtherOutput(link, real string, outputs []string) bool {
	for _, o := range outputs {
		if o == link {
			continue
		}
		if p, err := filepath.EvalSymlinks(o); err == nil && p == real {
			return true
		}
	}
	return false
}
