package remote

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	pollInterval    = 100 * time.Millisecond
	maxPollDuration = 5 * time.Second
)

// Connector returns clients of the execution service, spawning the service when none answers.
type Connector struct {
	executablePath string
	logger         ports.Logger
	metrics        ports.Metrics
}

// NewConnector creates a connector spawning the running executable.
func NewConnector(logger ports.Logger, metrics ports.Metrics) (*Connector, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine executable path")
	}
	return &Connector{executablePath: exe, logger: logger, metrics: metrics}, nil
}

// Connect returns a client of the service at socketPath.
func (c *Connector) Connect(ctx context.Context, socketPath string, cfg domain.ExecutorConfig) (*Client, error) {
	if client, err := c.dial(ctx, socketPath, cfg); err == nil {
		return client, nil
	}

	if err := c.Spawn(ctx, socketPath); err != nil {
		return nil, err
	}

	client, err := c.dial(ctx, socketPath, cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "executor started but is not responsive")
	}
	return client, nil
}

func (c *Connector) dial(ctx context.Context, socketPath string, cfg domain.ExecutorConfig) (*Client, error) {
	client, err := Dial(socketPath, cfg, c.logger, c.metrics)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Spawn starts `noderun executor serve` in the background and waits until it answers.
func (c *Connector) Spawn(ctx context.Context, socketPath string) error {
	absSocket, err := filepath.Abs(socketPath)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve socket path")
	}

	dir := filepath.Dir(absSocket)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrExecutorSpawnFailed.Error()), "dir", dir)
	}

	logPath := filepath.Join(dir, domain.ExecutorLogName)
	//nolint:gosec // G304: logPath is the socket directory plus a constant name
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.FilePerm)
	if err != nil {
		return zerr.Wrap(err, "failed to open executor log")
	}

	//nolint:gosec // G204: executablePath is the running binary, args are fixed
	cmd := exec.Command(c.executablePath, "executor", "serve", "--socket", absSocket)
	cmd.Dir = dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return zerr.Wrap(err, domain.ErrExecutorSpawnFailed.Error())
	}
	c.logger.Debug("spawned executor", "pid", cmd.Process.Pid, "socket", absSocket, "log", logPath)

	go func() {
		_ = cmd.Wait()
		_ = logFile.Close()
	}()

	return c.waitForStartup(ctx, absSocket)
}

func (c *Connector) waitForStartup(ctx context.Context, socketPath string) error {
	deadline := time.Now().Add(maxPollDuration)
	for time.Now().Before(deadline) {
		client, err := Dial(socketPath, domain.ExecutorConfig{}, c.logger, c.metrics)
		if err == nil {
			err = client.Ping(ctx)
			_ = client.Close()
			if err == nil {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return domain.ErrCancelled
		case <-time.After(pollInterval):
		}
	}
	return zerr.With(domain.ErrExecutorSpawnFailed, "socket", socketPath)
}
