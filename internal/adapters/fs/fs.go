// Package fs provides the file tree operations used to stage node inputs and outputs.
package fs

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// FileSystem implements ports.FileSystem on the local disk.
type FileSystem struct {
	walker *Walker
}

// New creates a FileSystem.
func New(walker *Walker) *FileSystem {
	return &FileSystem{walker: walker}
}

// HardlinkTree links the file or directory tree src to dst.
// Files on another device are copied.
func (f *FileSystem) HardlinkTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat link source"), "path", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", dst)
	}
	if !info.IsDir() {
		return link(src, dst, info)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, domain.DirPerm)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return link(path, target, fi)
	})
}

func link(src, dst string, info fs.FileInfo) error {
	err := os.Link(src, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EXDEV) && info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode().Perm())
	default:
		return zerr.With(zerr.Wrap(err, "failed to link file"), "path", dst)
	}
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // G304: paths come from build roots
	if err != nil {
		return zerr.Wrap(err, "failed to open copy source")
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm) //nolint:gosec // G304: see above
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create copy"), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	return out.Close()
}

// RemoveTree removes path. Read-only directories are made writable first.
// A missing path is not an error.
func (f *FileSystem) RemoveTree(path string) error {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			_ = os.Chmod(p, domain.DirPerm|0o200)
		}
		return nil
	})
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove tree"), "path", path)
	}
	return nil
}

// WalkFiles yields every regular file or symlink under root.
func (f *FileSystem) WalkFiles(root string) iter.Seq2[string, error] {
	return f.walker.WalkFiles(root)
}
