package domain

import "go.trai.ch/zerr"

var (
	// ErrNodeAlreadyExists is returned when a graph contains two nodes with the same uid.
	ErrNodeAlreadyExists = zerr.New("node already exists")

	// ErrMissingDependency is returned when a node references a dependency uid that is not in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the node dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrNodeNotFound is returned when a requested node uid is not in the graph.
	ErrNodeNotFound = zerr.New("node not found")

	// ErrGraphNotFound is returned when the graph file cannot be read.
	ErrGraphNotFound = zerr.New("graph file not found")

	// ErrGraphInvalid is returned when the graph file does not match the graph schema.
	ErrGraphInvalid = zerr.New("graph file is invalid")

	// ErrConfigNotFound is returned when a configuration file is requested but not found.
	ErrConfigNotFound = zerr.New("configuration file not found")

	// ErrConfigInvalid is returned when the configuration file cannot be decoded.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrInvalidCPURequirement is returned when a cpu requirement cannot be parsed.
	ErrInvalidCPURequirement = zerr.New("invalid cpu requirement")

	// ErrInvalidExecutor is returned when the configured executor kind is unknown.
	ErrInvalidExecutor = zerr.New("invalid executor, expected 'popen' or 'remote'")

	// ErrInvalidDistCacheBackend is returned when the configured distributed cache backend is unknown.
	ErrInvalidDistCacheBackend = zerr.New("invalid dist cache backend, expected 'none', 's3' or 'redis'")

	// ErrTextFileBusy is returned when spawning a command keeps failing with ETXTBSY.
	ErrTextFileBusy = zerr.New("text file busy")

	// ErrCancelled is returned when a node task is unwound by build cancellation.
	ErrCancelled = zerr.New("build cancelled")

	// ErrProcessStartFailed is returned when a command process cannot be spawned.
	ErrProcessStartFailed = zerr.New("failed to start process")

	// ErrBuildRootIntegrity is returned when a build root fails its post-execution validation.
	ErrBuildRootIntegrity = zerr.New("build root integrity check failed")

	// ErrOutputsExceedLimit is returned when the total size of node outputs exceeds the configured limit.
	ErrOutputsExceedLimit = zerr.New("task output size exceeds limit")

	// ErrBuildRootReleased is returned when a released build root handle is used.
	ErrBuildRootReleased = zerr.New("build root handle was released")

	// ErrNegativeRefcount is returned when a build root is released more times than it was acquired.
	ErrNegativeRefcount = zerr.New("negative build root refcount")

	// ErrBuildRootRecreate is returned when a deleted build root is acquired again.
	ErrBuildRootRecreate = zerr.New("cannot recreate build root")

	// ErrNoDirOutputArchive is returned when a dir output has no declared archive output.
	ErrNoDirOutputArchive = zerr.New("no declared archive for dir output")

	// ErrBuildRootCreateFailed is returned when a build root directory cannot be created.
	ErrBuildRootCreateFailed = zerr.New("failed to create build root")

	// ErrStealFailed is returned when outputs cannot be hard linked from a dependency root.
	ErrStealFailed = zerr.New("failed to steal build root")

	// ErrOutputDigestFailed is returned when output digests cannot be computed or persisted.
	ErrOutputDigestFailed = zerr.New("failed to compute output digests")

	// ErrStrictInputsFailed is returned when the private source root cannot be staged.
	ErrStrictInputsFailed = zerr.New("failed to stage strict inputs")

	// ErrCacheReadFailed is returned when reading from a cache fails.
	ErrCacheReadFailed = zerr.New("failed to read from cache")

	// ErrCacheWriteFailed is returned when writing to a cache fails.
	ErrCacheWriteFailed = zerr.New("failed to write to cache")

	// ErrCacheMiss is returned when a requested item is not found in the cache.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrArchiveFailed is returned when a build root archive cannot be created or extracted.
	ErrArchiveFailed = zerr.New("failed to process build root archive")

	// ErrBuildTimeStoreFailed is returned when the build time statistics store fails.
	ErrBuildTimeStoreFailed = zerr.New("build time store failure")

	// ErrNodeFunctionFailed is returned when an in-process node function fails unexpectedly.
	ErrNodeFunctionFailed = zerr.New("node function failed")

	// ErrBuildExecutionFailed is returned when one or more nodes fail to build.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrRemoteExecutorUnavailable is returned when the remote execution service cannot be reached.
	ErrRemoteExecutorUnavailable = zerr.New("remote executor unavailable")

	// ErrExecutorServerFailed is returned when the execution service cannot be served.
	ErrExecutorServerFailed = zerr.New("executor server failed")

	// ErrLockFailed is returned when the build root set stamp lock cannot be acquired.
	ErrLockFailed = zerr.New("failed to lock build root set")

	// ErrMetricsServerFailed is returned when the metrics endpoint cannot be served.
	ErrMetricsServerFailed = zerr.New("metrics server failed")

	// ErrExecutorSpawnFailed is returned when the remote executor process cannot be started.
	ErrExecutorSpawnFailed = zerr.New("failed to spawn remote executor")
)
