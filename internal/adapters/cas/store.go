// Package cas implements the local output cache: build root outputs stored by uid as hard links.
package cas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	manifestName = "manifest.json"
	filesDirName = "files"
	tmpDirName   = "tmp"
)

// manifest describes one cache entry. It is written last, so an entry without it is incomplete.
type manifest struct {
	UID     string    `json:"uid"`
	Files   []string  `json:"files"`
	Created time.Time `json:"created"`
}

// Store implements ports.Cache on the local disk.
type Store struct {
	dir    string
	fs     ports.FileSystem
	logger ports.Logger
	now    func() time.Time
}

var _ ports.Cache = (*Store)(nil)

// NewStore creates a Store backed by the directory dir.
func NewStore(dir string, fsys ports.FileSystem, logger ports.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, tmpDirName), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", dir)
	}
	return &Store{dir: dir, fs: fsys, logger: logger, now: time.Now}, nil
}

// TryRestore links the files of the entry stored under uid into dest.
func (s *Store) TryRestore(ctx context.Context, uid, dest string) (bool, error) {
	m, err := s.readManifest(uid)
	if err != nil || m == nil {
		return false, err
	}

	files := filepath.Join(s.entryPath(uid), filesDirName)
	for _, rel := range m.Files {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if err := s.fs.HardlinkTree(filepath.Join(files, rel), filepath.Join(dest, rel)); err != nil {
			return false, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
		}
	}
	s.logger.Debug("restored from local cache", "uid", uid, "files", len(m.Files))
	return true, nil
}

// Put stores files, absolute paths under root, under uid. An existing entry is kept.
func (s *Store) Put(ctx context.Context, uid, root string, files []string) error {
	if ok, err := s.Has(ctx, uid); err != nil || ok {
		return err
	}

	tmp, err := os.MkdirTemp(filepath.Join(s.dir, tmpDirName), "put-")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	defer func() { _ = s.fs.RemoveTree(tmp) }()

	m := manifest{UID: uid, Files: make([]string, 0, len(files)), Created: s.now()}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, file)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			return zerr.With(zerr.With(zerr.Wrap(errors.New("file is outside the build root"), domain.ErrCacheWriteFailed.Error()), "uid", uid), "path", file)
		}
		if err := s.fs.HardlinkTree(file, filepath.Join(tmp, filesDirName, rel)); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", uid)
		}
		m.Files = append(m.Files, rel)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	//nolint:gosec // Path is constructed from the cache directory
	if err := os.WriteFile(filepath.Join(tmp, manifestName), data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	entry := s.entryPath(uid)
	if err := os.MkdirAll(filepath.Dir(entry), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Rename(tmp, entry); err != nil {
		// A concurrent Put of the same uid won.
		if ok, _ := s.Has(ctx, uid); ok {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", uid)
	}
	s.logger.Debug("stored in local cache", "uid", uid, "files", len(m.Files))
	return nil
}

// Has reports whether a complete entry exists for uid.
func (s *Store) Has(_ context.Context, uid string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.entryPath(uid), manifestName))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
	}
}

// ClearUID removes the entry stored under uid.
func (s *Store) ClearUID(_ context.Context, uid string) error {
	if err := s.fs.RemoveTree(s.entryPath(uid)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", uid)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", s.dir)
	}
	for _, e := range entries {
		if err := s.fs.RemoveTree(filepath.Join(s.dir, e.Name())); err != nil {
			return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
		}
	}
	return os.MkdirAll(filepath.Join(s.dir, tmpDirName), domain.DirPerm)
}

func (s *Store) readManifest(uid string) (*manifest, error) {
	//nolint:gosec // Path is constructed from the cache directory and hashed uid
	data, err := os.ReadFile(filepath.Join(s.entryPath(uid), manifestName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
	}
	return &m, nil
}

// entryPath shards entries by the first byte of the hashed uid.
func (s *Store) entryPath(uid string) string {
	hash := sha256.Sum256([]byte(uid))
	hexHash := hex.EncodeToString(hash[:])
	return filepath.Join(s.dir, hexHash[:2], hexHash)
}
