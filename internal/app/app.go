// Package app implements the application layer for noderun.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/noderun/internal/adapters/display"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/engine/runner"
	"go.trai.ch/noderun/internal/engine/scheduler"
	"go.trai.ch/noderun/internal/ui/output"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader  ports.ConfigLoader
	graphLoader   ports.GraphLoader
	provisioner   ports.Provisioner
	fs            ports.FileSystem
	logger        ports.Logger
	tracer        ports.Tracer
	metrics       ports.Metrics
	metricsServer ports.MetricsServer
	watcher       ports.Watcher
	display       *display.Factory
	getwd         func() (string, error)
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	graphLoader ports.GraphLoader,
	provisioner ports.Provisioner,
	fsys ports.FileSystem,
	log ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
	metricsServer ports.MetricsServer,
	watcher ports.Watcher,
	displays *display.Factory,
) *App {
	return &App{
		configLoader:  configLoader,
		graphLoader:   graphLoader,
		provisioner:   provisioner,
		fs:            fsys,
		logger:        log,
		tracer:        tracer,
		metrics:       metrics,
		metricsServer: metricsServer,
		watcher:       watcher,
		display:       displays,
		getwd:         os.Getwd,
	}
}

// WithWorkDir makes the App resolve the configuration from dir instead of the process working
// directory. This is primarily used for testing.
func (a *App) WithWorkDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Targets are the node uids to build. Empty builds the graph results.
	Targets []string
	// Threads overrides the configured cpu slots when positive.
	Threads int
	// KeepGoing keeps building after a node failed.
	KeepGoing bool
	// NoCache disables restoring outputs from any cache.
	NoCache bool
	// Verbose prints partial results and debug logs.
	Verbose bool
	// OutputDir receives hard links of the requested outputs.
	OutputDir string
	// ExecutionLog is a file receiving the execution log and build errors as JSON.
	ExecutionLog string
	// Color is the --color flag value: auto, always or never.
	Color string
	// Watch rebuilds whenever the graph file or a node input changes.
	Watch bool
}

// logConfigurer is implemented by loggers whose format follows the configuration.
type logConfigurer interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// traceExporter is implemented by tracers able to export spans to a collector.
type traceExporter interface {
	Export(ctx context.Context, endpoint string) error
}

// session holds the adapters opened for one invocation of Run.
type session struct {
	cfg       *domain.Config
	executor  ports.Executor
	cache     ports.Cache
	dist      ports.DistCache
	buildTime ports.BuildTimeCache
	fuse      ports.FuseManager
	display   ports.Display
}

// Run builds the graph file at graphPath.
func (a *App) Run(ctx context.Context, graphPath string, opts RunOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	applyRunOptions(cfg, opts)
	a.configureLogger(cfg)

	graphPath, err = filepath.Abs(graphPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrGraphNotFound.Error())
	}
	plan, err := a.graphLoader.Load(graphPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load graph")
	}
	if plan.Conf.KeepOn {
		cfg.KeepGoing = true
	}

	if exporter, ok := a.tracer.(traceExporter); ok {
		if err := exporter.Export(ctx, cfg.OTLPEndpoint); err != nil {
			return err
		}
	}
	defer func() {
		_ = a.tracer.Shutdown(context.WithoutCancel(ctx))
	}()

	s, err := a.open(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer a.close(s)

	serveCtx, stopServing := context.WithCancel(ctx)
	g, serveCtx := errgroup.WithContext(serveCtx)
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return a.metricsServer.Serve(serveCtx, cfg.MetricsAddr)
		})
	}

	g.Go(func() error {
		defer stopServing()

		_, err := a.build(serveCtx, s, plan, opts)
		if !opts.Watch {
			return err
		}
		if err != nil && !errors.Is(err, domain.ErrBuildExecutionFailed) {
			return err
		}
		return a.watch(serveCtx, s, graphPath, plan, opts)
	})

	return g.Wait()
}

// applyRunOptions overrides the configuration with command line flags.
func applyRunOptions(cfg *domain.Config, opts RunOptions) {
	if opts.Threads > 0 {
		cfg.Threads = opts.Threads
	}
	cfg.KeepGoing = cfg.KeepGoing || opts.KeepGoing
	cfg.NoCache = cfg.NoCache || opts.NoCache
	cfg.Verbose = cfg.Verbose || opts.Verbose
	if opts.OutputDir != "" {
		cfg.OutputDir, _ = filepath.Abs(opts.OutputDir)
	}
}

func (a *App) loadConfig() (*domain.Config, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

func (a *App) configureLogger(cfg *domain.Config) {
	if l, ok := a.logger.(logConfigurer); ok {
		l.SetJSON(cfg.LogJSON)
		l.SetVerbose(cfg.Verbose)
	}
}

// open provisions the adapters a build needs.
func (a *App) open(ctx context.Context, cfg *domain.Config, opts RunOptions) (*session, error) {
	s := &session{
		cfg:     cfg,
		fuse:    a.provisioner.Fuse(cfg),
		display: a.display.Open(cfg, output.ResolveColorMode(opts.Color)),
	}

	var err error
	if s.executor, err = a.provisioner.Executor(ctx, cfg); err != nil {
		return nil, err
	}
	if s.cache, err = a.provisioner.Cache(cfg); err != nil {
		a.close(s)
		return nil, err
	}
	// Node uids do not follow source edits, so a watched build never restores from machines
	// that built other revisions.
	if !opts.Watch {
		if s.dist, err = a.provisioner.DistCache(ctx, cfg); err != nil {
			a.close(s)
			return nil, err
		}
	}
	if s.buildTime, err = a.provisioner.BuildTime(cfg); err != nil {
		a.close(s)
		return nil, err
	}
	return s, nil
}

func (a *App) close(s *session) {
	for _, c := range []any{s.executor, s.dist, s.buildTime} {
		closer, ok := c.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			a.logger.Warn("failed to close adapter", "error", err)
		}
	}
}

// build runs one build of plan and reports its outcome.
func (a *App) build(ctx context.Context, s *session, plan *domain.Plan, opts RunOptions) (*scheduler.Report, error) {
	roots, err := a.provisioner.BuildRoots(s.cfg)
	if err != nil {
		return nil, err
	}

	sched := scheduler.NewScheduler(runner.Build{
		Config:    s.cfg,
		Executor:  s.executor,
		Cache:     s.cache,
		DistCache: s.dist,
		BuildTime: s.buildTime,
		Fuse:      s.fuse,
		FS:        a.fs,
		Display:   s.display,
		Logger:    a.logger,
		Tracer:    a.tracer,
		Metrics:   a.metrics,
	})

	report, err := sched.Run(ctx, scheduler.Request{
		Graph:    plan.Graph,
		Patterns: plan.Patterns(s.cfg.Roots.Macros()),
		Roots:    roots,
		Targets:  opts.Targets,
	})
	if report == nil {
		if closeErr := roots.Close(); closeErr != nil {
			a.logger.Warn("failed to release build roots", "error", closeErr)
		}
		return nil, err
	}

	s.display.Summary(len(report.Results), report.Ledger.BuildErrors())
	if opts.ExecutionLog != "" {
		if logErr := writeExecutionLog(opts.ExecutionLog, report); logErr != nil {
			return report, errors.Join(err, logErr)
		}
	}
	return report, err
}

// executionLog is the document written by --execution-log.
type executionLog struct {
	ExecutionLog map[string]domain.ExecutionLogEntry `json:"execution_log"`
	BuildErrors  map[string]string                   `json:"build_errors"`
	ExitCodes    map[string]int                      `json:"exit_codes"`
}

func writeExecutionLog(path string, report *scheduler.Report) error {
	data, err := json.MarshalIndent(executionLog{
		ExecutionLog: report.Ledger.ExecutionLog(),
		BuildErrors:  report.Ledger.BuildErrors(),
		ExitCodes:    report.Ledger.ExitCodes(),
	}, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode execution log")
	}
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write execution log"), "path", path)
	}
	return nil
}

// ServeExecutor serves the remote execution service on socketPath until ctx is done or the
// service had no work for idleTimeout. An empty socketPath uses the configured address.
func (a *App) ServeExecutor(ctx context.Context, socketPath string, idleTimeout time.Duration) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.configureLogger(cfg)

	if socketPath == "" {
		socketPath = cfg.ExecutorAddress
	}
	return a.provisioner.ExecutorServer(cfg, idleTimeout).Serve(ctx, socketPath)
}

// ClearCache removes the local cache entries of uids, or every entry when uids is empty.
func (a *App) ClearCache(ctx context.Context, uids []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	cache, err := a.provisioner.Cache(cfg)
	if err != nil {
		return err
	}

	if len(uids) == 0 {
		a.logger.Info("clearing local cache", "path", cfg.CacheDir)
		return cache.Clear(ctx)
	}

	var errs error
	for _, uid := range uids {
		if err := cache.ClearUID(ctx, uid); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		a.logger.Info("cleared cache entry", "uid", uid)
	}
	return errs
}

// BuildTimeUsage is the latest build time recorded for a static uid.
type BuildTimeUsage struct {
	StaticUID string
	LastUsed  time.Time
	Seconds   int64
	Found     bool
}

// BuildTime returns the latest build time recorded for staticUID.
func (a *App) BuildTime(ctx context.Context, staticUID string) (BuildTimeUsage, error) {
	usage := BuildTimeUsage{StaticUID: staticUID}

	cfg, err := a.loadConfig()
	if err != nil {
		return usage, err
	}
	store, err := a.provisioner.BuildTime(cfg)
	if err != nil {
		return usage, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close build time store", "error", err)
		}
	}()

	usage.LastUsed, usage.Seconds, usage.Found, err = store.LastUsage(ctx, staticUID)
	return usage, err
}
