package ports

import "iter"

// FileSystem provides the tree operations used to stage node inputs and outputs.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// HardlinkTree links the file or directory tree src to dst, creating parent directories.
	HardlinkTree(src, dst string) error

	// RemoveTree removes path, making read-only directories writable first.
	RemoveTree(path string) error

	// WalkFiles yields every regular file or symlink under root.
	WalkFiles(root string) iter.Seq2[string, error]
}
