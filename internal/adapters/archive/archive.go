// Package archive packs and unpacks build root outputs as tar streams.
package archive

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
)

// Extension is the file extension of archives produced by Write.
const Extension = ".tar.zst"

var (
	errUnsafePath   = errors.New("archive entry escapes the destination")
	errNotUnderRoot = errors.New("file is not under the archive root")
)

// Write writes files, given as absolute paths under root, to w as a zstd compressed tar stream.
// Entries are sorted so equal trees produce equal archives.
func Write(w io.Writer, root string, files []string) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveFailed.Error())
	}
	if err := writeTar(zw, root, files); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrArchiveFailed.Error())
	}
	return nil
}

func writeTar(w io.Writer, root string, files []string) error {
	sorted := slices.Clone(files)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	tw := tar.NewWriter(w)
	for _, file := range sorted {
		if err := addFile(tw, root, file); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "path", file)
		}
	}
	if err := tw.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrArchiveFailed.Error())
	}
	return nil
}

func addFile(tw *tar.Writer, root, file string) error {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return errNotUnderRoot
	}

	info, err := os.Lstat(file)
	if err != nil {
		return err
	}
	var target string
	if info.Mode()&os.ModeSymlink != 0 {
		if target, err = os.Readlink(file); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, target)
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "", ""
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(file) //nolint:gosec // G304: paths come from build roots
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(tw, f)
	return err
}

// Read unpacks a stream produced by Write into dest.
func Read(r io.Reader, dest string) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveFailed.Error())
	}
	defer zr.Close()
	return readTar(zr, dest)
}

// IsArchive reports whether path names a tar archive ExtractFile can unpack.
func IsArchive(path string) bool {
	_, ok := decompressor(path)
	return ok
}

// ExtractFile unpacks the tar archive at path into dest. The compression is chosen by extension.
func ExtractFile(path, dest string) error {
	open, ok := decompressor(path)
	if !ok {
		return zerr.With(zerr.Wrap(errors.New("unknown archive type"), domain.ErrArchiveFailed.Error()), "path", path)
	}

	f, err := os.Open(path) //nolint:gosec // G304: archives are declared outputs
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	r, closeFn, err := open(f)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "path", path)
	}
	defer closeFn()
	return readTar(r, dest)
}

type openFunc func(io.Reader) (io.Reader, func(), error)

func decompressor(path string) (openFunc, bool) {
	switch {
	case strings.HasSuffix(path, ".tar"):
		return func(r io.Reader) (io.Reader, func(), error) { return r, func() {}, nil }, true
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		return func(r io.Reader) (io.Reader, func(), error) {
			gr, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return gr, func() { _ = gr.Close() }, nil
		}, true
	case strings.HasSuffix(path, ".tar.zst"), strings.HasSuffix(path, ".tar.zstd"):
		return func(r io.Reader) (io.Reader, func(), error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return zr, zr.Close, nil
		}, true
	}
	return nil, false
}

func readTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, domain.ErrArchiveFailed.Error())
		}
		if err := extractEntry(tr, hdr, dest); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "entry", hdr.Name)
		}
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, dest string) error {
	target := filepath.Join(dest, filepath.FromSlash(hdr.Name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return errUnsafePath
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, domain.DirPerm)
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
			return err
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return os.Symlink(hdr.Linkname, target)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode).Perm()) //nolint:gosec // G304: checked above
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil { //nolint:gosec // G110: archives come from our own caches
			_ = out.Close()
			return err
		}
		return out.Close()
	}
	return nil
}
