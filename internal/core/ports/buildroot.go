package ports

import (
	"context"

	"go.trai.ch/noderun/internal/core/domain"
)

// BuildRoot is the scratch directory one node executes in.
//
//go:generate mockgen -source=buildroot.go -destination=mocks/mock_buildroot.go -package=mocks
type BuildRoot interface {
	// Path returns the absolute path of the root.
	Path() string

	// Create creates the directory.
	Create() error

	// OK reports whether the root passed validation and may be stolen.
	OK() bool

	// Steal hard links the outputs into the directory into and releases one reference.
	Steal(into string) error

	// Validate checks that every declared output exists and is a regular file or an allowed symlink.
	Validate() error

	// ReadOutputDigests loads the output digests or computes them.
	// With writeIfAbsent the computed digests are persisted and become an output of the root.
	// It returns nil when an output is missing.
	ReadOutputDigests(writeIfAbsent bool) (*domain.OutputDigests, error)

	// ValidateDirOutputs checks that every directory output has a declared archive.
	ValidateDirOutputs() error

	// ExtractDirOutputs unpacks directory outputs from their archives.
	ExtractDirOutputs() error

	// PropagateDirOutputs registers every file of the directory outputs as an output.
	PropagateDirOutputs() error

	// AddOutput registers an additional output. $(BUILD_ROOT) is expanded.
	AddOutput(path string)

	// Outputs returns the absolute paths of all outputs.
	Outputs() []string

	// DirOutputFiles returns the files found under the directory outputs.
	DirOutputFiles() ([]string, error)

	// Inc adds a reference.
	Inc() error

	// Dec releases a reference. The directory is removed when the last one is gone.
	Dec() error
}

// BuildRootSet allocates build roots under one locked directory of a build.
type BuildRootSet interface {
	// New allocates a root that is released after refcount Dec calls.
	New(outputs []string, refcount int, dirOutputs []string, computeHash bool) BuildRoot

	// Cleanup removes stale sets of earlier builds and then this one.
	Cleanup(ctx context.Context) error

	// Close releases the set lock without removing anything.
	Close() error
}
