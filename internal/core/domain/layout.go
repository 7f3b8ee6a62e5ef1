package domain

import "path/filepath"

const (
	// StateDirName is the name of the internal workspace directory.
	StateDirName = ".noderun"

	// BuildDirName is the name of the build roots directory.
	BuildDirName = "build"

	// CacheDirName is the name of the local output cache directory.
	CacheDirName = "cache"

	// BuildTimeDirName is the name of the build time statistics directory.
	BuildTimeDirName = "buildtime"

	// ConfigFileName is the name of the runner configuration file.
	ConfigFileName = "noderun.yaml"

	// ExecutorSocketName is the name of the remote executor socket file.
	ExecutorSocketName = "executor.sock"

	// ExecutorLogName is the log file of a spawned remote executor, next to its socket.
	ExecutorLogName = "executor.log"

	// TmpDirName is the per build root scratch directory exported as TMPDIR.
	TmpDirName = "r3tmp"

	// StrictSourceRootName is the private source root staged inside a build root.
	StrictSourceRootName = "source_root"

	// StampFileName marks a live build root set and carries its lock.
	StampFileName = "STAMP"

	// OutputDigestsFileName is the build root file holding persisted output digests.
	OutputDigestsFileName = ".output_digests.json"

	// EmptyDirOutputsMetaName is the build root file listing empty directories of dir outputs.
	EmptyDirOutputsMetaName = ".empty_dir_outputs.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// SocketPerm is the permission of the executor socket (rw-------).
	SocketPerm = 0o600
)

// DefaultBuildPath returns the default directory for build root sets.
// It joins .noderun and build.
func DefaultBuildPath() string {
	return filepath.Join(StateDirName, BuildDirName)
}

// DefaultCachePath returns the default directory for the local output cache.
// It joins .noderun and cache.
func DefaultCachePath() string {
	return filepath.Join(StateDirName, CacheDirName)
}

// DefaultBuildTimePath returns the default directory for build time statistics.
// It joins .noderun and buildtime.
func DefaultBuildTimePath() string {
	return filepath.Join(StateDirName, BuildTimeDirName)
}

// DefaultExecutorSocketPath returns the default socket path of the remote executor.
// It joins .noderun and executor.sock.
func DefaultExecutorSocketPath() string {
	return filepath.Join(StateDirName, ExecutorSocketName)
}
