package domain

import (
	"path/filepath"
	"runtime"
	"time"
)

// ExecutorKind selects the executor implementation.
type ExecutorKind string

const (
	// ExecutorPopen runs commands as local subprocesses.
	ExecutorPopen ExecutorKind = "popen"
	// ExecutorRemote sends commands to an executor service.
	ExecutorRemote ExecutorKind = "remote"
)

// DistCacheBackend selects the distributed cache implementation.
type DistCacheBackend string

const (
	// DistCacheNone disables the distributed cache.
	DistCacheNone DistCacheBackend = "none"
	// DistCacheS3 stores archives in an S3 compatible bucket.
	DistCacheS3 DistCacheBackend = "s3"
	// DistCacheRedis stores archives in redis.
	DistCacheRedis DistCacheBackend = "redis"
)

// Roots are the directories bound to the well-known macros.
type Roots struct {
	Source    string
	Build     string
	Tool      string
	Resource  string
	TestsData string
}

// Macros returns the roots keyed by macro name. BUILD_ROOT is bound per node and not included.
func (r Roots) Macros() map[string]string {
	return map[string]string{
		SourceRoot:    r.Source,
		ToolRoot:      r.Tool,
		ResourceRoot:  r.Resource,
		TestsDataRoot: r.TestsData,
	}
}

// S3Config configures the S3 distributed cache.
type S3Config struct {
	Endpoint        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Prefix          string
}

// RedisConfig configures the redis distributed cache.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// DistCacheConfig configures the distributed cache.
type DistCacheConfig struct {
	Backend       DistCacheBackend
	Readonly      bool
	MaxSize       int64
	PutsPerSecond float64
	S3            S3Config
	Redis         RedisConfig
}

// BuildTimeConfig configures the build time statistics store.
type BuildTimeConfig struct {
	Dir      string
	InMemory bool
}

// Config is the runner configuration.
type Config struct {
	Threads       int
	TestThreads   int
	IOSlots       int
	DownloadSlots int

	Executor               ExecutorKind
	ExecutorAddress        string
	TextFileBusyRetries    int
	TextFileBusyRetryDelay time.Duration
	Nice                   int

	KeepTemps          bool
	Sandboxing         bool
	StrictInputs       bool
	ShowTimings        bool
	MaskRoots          bool
	DoNotOutputStderrs bool
	Verbose            bool
	DetailedArgs       bool
	PrivateNetNS       bool
	ContentUIDs        bool
	ClearBuild         bool
	KeepGoing          bool
	EagerExecution     bool
	DirOutputsTestMode bool
	RunnerDirOutputs   bool
	ValidateContent    bool
	MaxOutputSize      int64
	StoreWriteThrough  bool
	NoCache            bool

	// OutputDir receives hard links of the outputs of the requested nodes. Empty disables it.
	OutputDir string

	Roots     Roots
	CacheDir  string
	DistCache DistCacheConfig
	BuildTime BuildTimeConfig

	OTLPEndpoint string
	MetricsAddr  string
	LogJSON      bool
}

// DefaultConfig returns the configuration used when noderun.yaml sets nothing, rooted at root.
func DefaultConfig(root string) Config {
	threads := runtime.NumCPU()
	c := Config{
		Threads:                threads,
		TestThreads:            max(1, threads/2),
		IOSlots:                2,
		DownloadSlots:          4,
		Executor:               ExecutorPopen,
		ExecutorAddress:        DefaultExecutorSocketPath(),
		TextFileBusyRetries:    10,
		TextFileBusyRetryDelay: 100 * time.Millisecond,
		ContentUIDs:            true,
		StoreWriteThrough:      true,
		Roots: Roots{
			Source: root,
			Build:  DefaultBuildPath(),
		},
		CacheDir: DefaultCachePath(),
		DistCache: DistCacheConfig{
			Backend: DistCacheNone,
			Redis:   RedisConfig{Prefix: "noderun:", TTL: 7 * 24 * time.Hour},
		},
		BuildTime: BuildTimeConfig{Dir: DefaultBuildTimePath()},
	}
	c.Resolve(root)
	return c
}

// ExecutorConfig is the immutable configuration of an executor.
type ExecutorConfig struct {
	TextFileBusyRetries    int
	TextFileBusyRetryDelay time.Duration
	// TerminateTimeout is how long a cancelled command may take to exit after SIGTERM.
	TerminateTimeout time.Duration
}

// ExecutorConfig returns the executor configuration of c.
func (c *Config) ExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		TextFileBusyRetries:    c.TextFileBusyRetries,
		TextFileBusyRetryDelay: c.TextFileBusyRetryDelay,
		TerminateTimeout:       5 * time.Second,
	}
}

// Capacity returns the worker pool capacity of c.
func (c *Config) Capacity() ResInfo {
	return ResInfo{CPU: c.Threads, IO: c.IOSlots, Download: c.DownloadSlots, Test: c.TestThreads}
}

// Workers returns the number of worker goroutines needed to saturate the capacity.
func (c *Config) Workers() int {
	return c.Threads + c.IOSlots + c.DownloadSlots
}

// Resolve makes relative paths of c absolute against base.
func (c *Config) Resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Roots.Source = abs(c.Roots.Source)
	c.Roots.Build = abs(c.Roots.Build)
	c.Roots.Tool = abs(c.Roots.Tool)
	c.Roots.Resource = abs(c.Roots.Resource)
	c.Roots.TestsData = abs(c.Roots.TestsData)
	c.CacheDir = abs(c.CacheDir)
	c.BuildTime.Dir = abs(c.BuildTime.Dir)
	c.ExecutorAddress = abs(c.ExecutorAddress)
	c.OutputDir = abs(c.OutputDir)
}
