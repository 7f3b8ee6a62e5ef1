// Package config provides the configuration loader for noderun.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load finds noderun.yaml walking up from cwd and returns it with defaults applied.
// Relative paths in the file are resolved against the directory holding it.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	configPath, err := l.findConfiguration(cwd)
	if errors.Is(err, fs.ErrNotExist) {
		l.Logger.Debug("no configuration file found, using defaults", "cwd", cwd)
		cfg := domain.DefaultConfig(cwd)
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(configPath)
	defaults := domain.DefaultConfig(root)
	runnerfile := fromConfig(&defaults)
	if err := l.readAndUnmarshalYAML(configPath, &runnerfile); err != nil {
		return nil, err
	}

	cfg := runnerfile.toConfig()
	cfg.Resolve(root)
	if err := validate(&cfg); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	l.Logger.Debug("configuration loaded", "path", configPath)
	return &cfg, nil
}

// DiscoverRoot walks up from cwd to the directory holding noderun.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
	}
	return filepath.Dir(configPath), nil
}

func (l *Loader) findConfiguration(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := l.FS.Stat(configPath); err == nil {
			return configPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", fs.ErrNotExist
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Runnerfile) error {
	configFile, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(zerr.Wrap(parseErr, domain.ErrConfigInvalid.Error()), "path", configPath)
	}

	return nil
}

// validate checks the values a YAML decoder cannot.
func validate(cfg *domain.Config) error {
	switch cfg.Executor {
	case domain.ExecutorPopen, domain.ExecutorRemote:
	default:
		return zerr.With(domain.ErrInvalidExecutor, "executor", string(cfg.Executor))
	}

	switch cfg.DistCache.Backend {
	case domain.DistCacheNone, domain.DistCacheS3, domain.DistCacheRedis:
	default:
		return zerr.With(domain.ErrInvalidDistCacheBackend, "backend", string(cfg.DistCache.Backend))
	}

	if cfg.Threads < 1 {
		return zerr.With(domain.ErrConfigInvalid, "threads", cfg.Threads)
	}
	if cfg.TestThreads < 1 {
		return zerr.With(domain.ErrConfigInvalid, "test_threads", cfg.TestThreads)
	}
	if cfg.IOSlots < 0 || cfg.DownloadSlots < 0 {
		return zerr.With(domain.ErrConfigInvalid, "io_slots", cfg.IOSlots)
	}
	if cfg.TextFileBusyRetries < 1 {
		return zerr.With(domain.ErrConfigInvalid, "text_file_busy_retries", cfg.TextFileBusyRetries)
	}
	if cfg.MaxOutputSize < 0 {
		return zerr.With(domain.ErrConfigInvalid, "max_output_size", cfg.MaxOutputSize)
	}

	return nil
}
