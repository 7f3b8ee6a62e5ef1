package config

import (
	"time"

	"go.trai.ch/noderun/internal/core/domain"
)

// Runnerfile represents the structure of the noderun.yaml configuration file.
type Runnerfile struct {
	Version string `yaml:"version"`

	Threads       int `yaml:"threads"`
	TestThreads   int `yaml:"test_threads"`
	IOSlots       int `yaml:"io_slots"`
	DownloadSlots int `yaml:"download_slots"`

	Executor               string        `yaml:"executor"`
	ExecutorAddress        string        `yaml:"executor_address"`
	TextFileBusyRetries    int           `yaml:"text_file_busy_retries"`
	TextFileBusyRetryDelay time.Duration `yaml:"text_file_busy_retry_delay"`
	Nice                   int           `yaml:"nice"`

	KeepTemps          bool  `yaml:"keep_temps"`
	Sandboxing         bool  `yaml:"sandboxing"`
	StrictInputs       bool  `yaml:"strict_inputs"`
	ShowTimings        bool  `yaml:"show_timings"`
	MaskRoots          bool  `yaml:"mask_roots"`
	DoNotOutputStderrs bool  `yaml:"do_not_output_stderrs"`
	Verbose            bool  `yaml:"verbose"`
	DetailedArgs       bool  `yaml:"detailed_args"`
	PrivateNetNS       bool  `yaml:"private_net_ns"`
	ContentUIDs        bool  `yaml:"content_uids"`
	ClearBuild         bool  `yaml:"clear_build"`
	KeepGoing          bool  `yaml:"keep_going"`
	EagerExecution     bool  `yaml:"eager_execution"`
	DirOutputsTestMode bool  `yaml:"dir_outputs_test_mode"`
	RunnerDirOutputs   bool  `yaml:"runner_dir_outputs"`
	ValidateContent    bool  `yaml:"validate_content"`
	MaxOutputSize      int64 `yaml:"max_output_size"`
	StoreWriteThrough  bool  `yaml:"store_write_through"`

	OutputDir string `yaml:"output_dir"`

	Roots     RootsDTO     `yaml:"roots"`
	Cache     CacheDTO     `yaml:"cache"`
	DistCache DistCacheDTO `yaml:"dist_cache"`
	BuildTime BuildTimeDTO `yaml:"build_time_cache"`
	Telemetry TelemetryDTO `yaml:"telemetry"`
	Metrics   MetricsDTO   `yaml:"metrics"`
	Log       LogDTO       `yaml:"log"`
}

// RootsDTO represents the roots section.
type RootsDTO struct {
	Source    string `yaml:"source"`
	Build     string `yaml:"build"`
	Tool      string `yaml:"tool"`
	Resource  string `yaml:"resource"`
	TestsData string `yaml:"tests_data"`
}

// CacheDTO represents the local cache section.
type CacheDTO struct {
	Dir string `yaml:"dir"`
}

// DistCacheDTO represents the distributed cache section.
type DistCacheDTO struct {
	Backend       string   `yaml:"backend"`
	Readonly      bool     `yaml:"readonly"`
	MaxSize       int64    `yaml:"max_size"`
	PutsPerSecond float64  `yaml:"puts_per_second"`
	S3            S3DTO    `yaml:"s3"`
	Redis         RedisDTO `yaml:"redis"`
}

// S3DTO represents the S3 backend settings.
type S3DTO struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Prefix          string `yaml:"prefix"`
}

// RedisDTO represents the redis backend settings.
type RedisDTO struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// BuildTimeDTO represents the build time cache section.
type BuildTimeDTO struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

// TelemetryDTO represents the telemetry section.
type TelemetryDTO struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// MetricsDTO represents the metrics section.
type MetricsDTO struct {
	Addr string `yaml:"addr"`
}

// LogDTO represents the log section.
type LogDTO struct {
	JSON bool `yaml:"json"`
}

// fromConfig seeds a Runnerfile with the values of c so that decoding only overrides
// the keys present in the file.
func fromConfig(c *domain.Config) Runnerfile {
	return Runnerfile{
		Threads:                c.Threads,
		TestThreads:            c.TestThreads,
		IOSlots:                c.IOSlots,
		DownloadSlots:          c.DownloadSlots,
		Executor:               string(c.Executor),
		ExecutorAddress:        c.ExecutorAddress,
		TextFileBusyRetries:    c.TextFileBusyRetries,
		TextFileBusyRetryDelay: c.TextFileBusyRetryDelay,
		Nice:                   c.Nice,
		KeepTemps:              c.KeepTemps,
		Sandboxing:             c.Sandboxing,
		StrictInputs:           c.StrictInputs,
		ShowTimings:            c.ShowTimings,
		MaskRoots:              c.MaskRoots,
		DoNotOutputStderrs:     c.DoNotOutputStderrs,
		Verbose:                c.Verbose,
		DetailedArgs:           c.DetailedArgs,
		PrivateNetNS:           c.PrivateNetNS,
		ContentUIDs:            c.ContentUIDs,
		ClearBuild:             c.ClearBuild,
		KeepGoing:              c.KeepGoing,
		EagerExecution:         c.EagerExecution,
		DirOutputsTestMode:     c.DirOutputsTestMode,
		RunnerDirOutputs:       c.RunnerDirOutputs,
		ValidateContent:        c.ValidateContent,
		MaxOutputSize:          c.MaxOutputSize,
		StoreWriteThrough:      c.StoreWriteThrough,
		OutputDir:              c.OutputDir,
		Roots: RootsDTO{
			Source:    c.Roots.Source,
			Build:     c.Roots.Build,
			Tool:      c.Roots.Tool,
			Resource:  c.Roots.Resource,
			TestsData: c.Roots.TestsData,
		},
		Cache: CacheDTO{Dir: c.CacheDir},
		DistCache: DistCacheDTO{
			Backend:       string(c.DistCache.Backend),
			Readonly:      c.DistCache.Readonly,
			MaxSize:       c.DistCache.MaxSize,
			PutsPerSecond: c.DistCache.PutsPerSecond,
			S3: S3DTO{
				Endpoint:        c.DistCache.S3.Endpoint,
				Bucket:          c.DistCache.S3.Bucket,
				Region:          c.DistCache.S3.Region,
				AccessKeyID:     c.DistCache.S3.AccessKeyID,
				SecretAccessKey: c.DistCache.S3.SecretAccessKey,
				UseSSL:          c.DistCache.S3.UseSSL,
				Prefix:          c.DistCache.S3.Prefix,
			},
			Redis: RedisDTO{
				URL:      c.DistCache.Redis.URL,
				Password: c.DistCache.Redis.Password,
				DB:       c.DistCache.Redis.DB,
				Prefix:   c.DistCache.Redis.Prefix,
				TTL:      c.DistCache.Redis.TTL,
			},
		},
		BuildTime: BuildTimeDTO{Dir: c.BuildTime.Dir, InMemory: c.BuildTime.InMemory},
		Telemetry: TelemetryDTO{OTLPEndpoint: c.OTLPEndpoint},
		Metrics:   MetricsDTO{Addr: c.MetricsAddr},
		Log:       LogDTO{JSON: c.LogJSON},
	}
}

// toConfig converts the decoded file into a domain.Config.
func (r *Runnerfile) toConfig() domain.Config {
	return domain.Config{
		Threads:                r.Threads,
		TestThreads:            r.TestThreads,
		IOSlots:                r.IOSlots,
		DownloadSlots:          r.DownloadSlots,
		Executor:               domain.ExecutorKind(r.Executor),
		ExecutorAddress:        r.ExecutorAddress,
		TextFileBusyRetries:    r.TextFileBusyRetries,
		TextFileBusyRetryDelay: r.TextFileBusyRetryDelay,
		Nice:                   r.Nice,
		KeepTemps:              r.KeepTemps,
		Sandboxing:             r.Sandboxing,
		StrictInputs:           r.StrictInputs,
		ShowTimings:            r.ShowTimings,
		MaskRoots:              r.MaskRoots,
		DoNotOutputStderrs:     r.DoNotOutputStderrs,
		Verbose:                r.Verbose,
		DetailedArgs:           r.DetailedArgs,
		PrivateNetNS:           r.PrivateNetNS,
		ContentUIDs:            r.ContentUIDs,
		ClearBuild:             r.ClearBuild,
		KeepGoing:              r.KeepGoing,
		EagerExecution:         r.EagerExecution,
		DirOutputsTestMode:     r.DirOutputsTestMode,
		RunnerDirOutputs:       r.RunnerDirOutputs,
		ValidateContent:        r.ValidateContent,
		MaxOutputSize:          r.MaxOutputSize,
		StoreWriteThrough:      r.StoreWriteThrough,
		OutputDir:              r.OutputDir,
		Roots: domain.Roots{
			Source:    r.Roots.Source,
			Build:     r.Roots.Build,
			Tool:      r.Roots.Tool,
			Resource:  r.Roots.Resource,
			TestsData: r.Roots.TestsData,
		},
		CacheDir: r.Cache.Dir,
		DistCache: domain.DistCacheConfig{
			Backend:       domain.DistCacheBackend(r.DistCache.Backend),
			Readonly:      r.DistCache.Readonly,
			MaxSize:       r.DistCache.MaxSize,
			PutsPerSecond: r.DistCache.PutsPerSecond,
			S3: domain.S3Config{
				Endpoint:        r.DistCache.S3.Endpoint,
				Bucket:          r.DistCache.S3.Bucket,
				Region:          r.DistCache.S3.Region,
				AccessKeyID:     r.DistCache.S3.AccessKeyID,
				SecretAccessKey: r.DistCache.S3.SecretAccessKey,
				UseSSL:          r.DistCache.S3.UseSSL,
				Prefix:          r.DistCache.S3.Prefix,
			},
			Redis: domain.RedisConfig{
				URL:      r.DistCache.Redis.URL,
				Password: r.DistCache.Redis.Password,
				DB:       r.DistCache.Redis.DB,
				Prefix:   r.DistCache.Redis.Prefix,
				TTL:      r.DistCache.Redis.TTL,
			},
		},
		BuildTime:    domain.BuildTimeConfig{Dir: r.BuildTime.Dir, InMemory: r.BuildTime.InMemory},
		OTLPEndpoint: r.Telemetry.OTLPEndpoint,
		MetricsAddr:  r.Metrics.Addr,
		LogJSON:      r.Log.JSON,
	}
}
