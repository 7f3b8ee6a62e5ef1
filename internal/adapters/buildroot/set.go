// Package buildroot manages the scratch directories nodes execute in.
package buildroot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// sieveParallelism bounds the concurrent removals of stale sets.
const sieveParallelism = 4

// Options configure the roots of a set.
type Options struct {
	// Keep leaves every root on disk and skips locking.
	Keep bool
	// ValidateContent compares persisted output digests with the files on Validate.
	ValidateContent bool
	// MaxOutputSize limits the total size of the outputs of a root. Zero disables the limit.
	MaxOutputSize int64
}

// Set is a directory of build roots owned by one build. While the set lives its STAMP file is
// locked, so concurrent builds never remove each other's roots.
type Set struct {
	store  string
	dir    string
	opts   Options
	fs     ports.FileSystem
	logger ports.Logger

	stamp *os.File

	mu  sync.Mutex
	id  int
	new int
}

// NewSet creates a uniquely named set under store and locks it.
func NewSet(store string, opts Options, fsys ports.FileSystem, logger ports.Logger) (*Set, error) {
	if err := os.MkdirAll(store, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBuildRootCreateFailed.Error()), "path", store)
	}

	dir, err := makeSetDir(store)
	if err != nil {
		return nil, err
	}

	s := &Set{store: store, dir: dir, opts: opts, fs: fsys, logger: logger}
	stamp, err := os.OpenFile(s.stampPath(), os.O_CREATE|os.O_RDWR, domain.FilePerm) //nolint:gosec // G304: path is generated
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", s.stampPath())
	}
	if !opts.Keep {
		if err := unix.Flock(int(stamp.Fd()), unix.LOCK_EX); err != nil { //nolint:gosec // G115: fd fits in int
			_ = stamp.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", s.stampPath())
		}
	}
	s.stamp = stamp
	return s, nil
}

func makeSetDir(store string) (string, error) {
	for {
		dir := filepath.Join(store, uuid.NewString())
		err := os.Mkdir(dir, domain.DirPerm)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", zerr.With(zerr.Wrap(err, domain.ErrBuildRootCreateFailed.Error()), "path", dir)
		}
	}
}

// Path returns the directory of the set.
func (s *Set) Path() string {
	return s.dir
}

func (s *Set) stampPath() string {
	return filepath.Join(s.dir, domain.StampFileName)
}

// New allocates a root with a fresh sequential name.
func (s *Set) New(outputs []string, refcount int, dirOutputs []string, computeHash bool) ports.BuildRoot {
	s.mu.Lock()
	s.id++
	s.new++
	id := s.id
	s.mu.Unlock()

	return newRoot(s, filepath.Join(s.dir, fmt.Sprintf("%06x", id)), outputs, refcount, dirOutputs, computeHash)
}

// Cleanup removes the stale sets of earlier builds whose lock is free, then this set.
func (s *Set) Cleanup(ctx context.Context) error {
	if s.opts.Keep {
		return s.Close()
	}

	s.sieve(ctx)

	s.mu.Lock()
	created := s.new
	s.mu.Unlock()
	if entries, err := os.ReadDir(s.dir); err == nil {
		s.logger.Debug("removing build root set", "path", s.dir, "created", created, "left", len(entries)-1)
	}

	err := s.fs.RemoveTree(s.dir)
	if closeErr := s.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

// Close releases the lock without removing anything.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stamp == nil {
		return nil
	}
	err := s.stamp.Close()
	s.stamp = nil
	return err
}

// sieve removes sets left behind by builds that no longer hold their lock.
func (s *Set) sieve(ctx context.Context) {
	entries, err := os.ReadDir(s.store)
	if err != nil {
		s.logger.Debug("cannot list build root sets", "path", s.store, "error", err)
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sieveParallelism)
	for _, e := range entries {
		dir := filepath.Join(s.store, e.Name())
		if !e.IsDir() || dir == s.dir {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, domain.StampFileName)); err != nil {
			continue
		}
		g.Go(func() error {
			if ctx.Err() == nil {
				s.removeStale(dir)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Set) removeStale(dir string) {
	stamp := filepath.Join(dir, domain.StampFileName)
	f, err := os.Open(stamp) //nolint:gosec // G304: path is under the store
	if err != nil {
		s.logger.Debug("cannot open stale stamp", "path", stamp, "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil { //nolint:gosec // G115: fd fits in int
		s.logger.Debug("build root set is in use", "path", dir)
		return
	}
	s.logger.Debug("removing stale build root set", "path", dir)
	if err := s.fs.RemoveTree(dir); err != nil {
		s.logger.Debug("cannot remove stale build root set", "path", dir, "error", err)
	}
}
