// Package popen runs node commands as local subprocesses.
package popen

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/engine/protocol"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// lineBuffer bounds the stderr lines queued between the reader and the command loop.
const lineBuffer = 256

// Executor implements ports.Executor with os/exec.
type Executor struct {
	cfg     domain.ExecutorConfig
	logger  ports.Logger
	metrics ports.Metrics

	start func(*exec.Cmd) error
}

// NewExecutor creates an Executor.
func NewExecutor(cfg domain.ExecutorConfig, logger ports.Logger, metrics ports.Metrics) *Executor {
	return &Executor{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		start:   (*exec.Cmd).Start,
	}
}

// Run executes the command of req and blocks until it exits.
// A spawn failing with ETXTBSY is attempted TextFileBusyRetries times before
// domain.ErrTextFileBusy is returned.
func (e *Executor) Run(ctx context.Context, req domain.ExecRequest, sink ports.ProgressSink) (domain.ExecResult, error) {
	if len(req.Args) == 0 {
		return domain.ExecResult{}, zerr.Wrap(errors.New("empty command"), domain.ErrProcessStartFailed.Error())
	}

	attempts := max(1, e.cfg.TextFileBusyRetries)
	for attempt := 1; ; attempt++ {
		res, err := e.runProcess(ctx, req, sink)
		if err == nil || !errors.Is(err, unix.ETXTBSY) {
			return res, err
		}
		if attempt >= attempts {
			LogTextFileBusy(e.logger, Resolve(req))
			return domain.ExecResult{}, domain.ErrTextFileBusy
		}

		e.logger.Warn("Text file busy, retrying...", "cmd", req.Args[0], "attempt", attempt)
		e.metrics.TextFileBusyRetry()

		select {
		case <-ctx.Done():
			return domain.ExecResult{}, domain.ErrCancelled
		case <-time.After(e.cfg.TextFileBusyRetryDelay):
		}
	}
}

func (e *Executor) runProcess(ctx context.Context, req domain.ExecRequest, sink ports.ProgressSink) (domain.ExecResult, error) {
	if ctx.Err() != nil {
		return domain.ExecResult{}, domain.ErrCancelled
	}

	cmd := exec.Command(Resolve(req), req.Args[1:]...) //nolint:gosec // G204: node commands are the input
	cmd.Args[0] = req.Args[0]
	cmd.Env = req.Env
	cmd.Dir = req.Cwd
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := openStdout(req.Stdout)
	if err != nil {
		return domain.ExecResult{}, err
	}
	defer func() { _ = stdout.Close() }()
	cmd.Stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return domain.ExecResult{}, zerr.Wrap(err, domain.ErrProcessStartFailed.Error())
	}

	if err := e.start(cmd); err != nil {
		return domain.ExecResult{}, err
	}
	e.renice(cmd.Process.Pid, req.Nice)

	lines := make(chan string, lineBuffer)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer close(lines)
		_ = protocol.ReadLines(stderr, func(line string) { lines <- line })
	}()

	exited := make(chan error, 1)
	go func() {
		<-readDone
		exited <- cmd.Wait()
	}()

	parser := protocol.NewParser(sink)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			parser.Line(line)
		case err := <-exited:
			for line := range lines {
				parser.Line(line)
			}
			return exitResult(parser.Stderr(), err)
		case <-ctx.Done():
			e.terminate(cmd, exited, lines)
			return domain.ExecResult{}, domain.ErrCancelled
		}
	}
}

func exitResult(stderr string, err error) (domain.ExecResult, error) {
	res := domain.ExecResult{Stderr: stderr}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return domain.ExecResult{}, zerr.Wrap(err, "failed to wait for process")
	}
	res.ExitCode = exitErr.ExitCode()
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		res.ExitCode = -int(status.Signal())
	}
	return res, nil
}

// terminate sends SIGTERM to the process group and SIGKILL once TerminateTimeout passed.
func (e *Executor) terminate(cmd *exec.Cmd, exited <-chan error, lines <-chan string) {
	pid := cmd.Process.Pid
	e.logger.Debug("terminating command", "pid", pid)
	_ = unix.Kill(-pid, unix.SIGTERM)

	// The reader must finish before Wait returns. A nil lines was already drained.
	if lines != nil {
		go func() {
			for range lines {
			}
		}()
	}

	select {
	case <-exited:
	case <-time.After(e.cfg.TerminateTimeout):
		e.logger.Warn("command ignored SIGTERM, killing it", "pid", pid)
		_ = unix.Kill(-pid, unix.SIGKILL)
		<-exited
	}
	e.logger.Debug("command cancelled", "pid", pid)
}

// renice adds nice to the niceness of pid. Failures are ignored.
func (e *Executor) renice(pid, nice int) {
	if nice == 0 {
		return
	}
	// The raw syscall reports 20 - niceness.
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, 0)
	if err != nil {
		return
	}
	if err := unix.Setpriority(unix.PRIO_PROCESS, pid, 20-prio+nice); err != nil {
		e.logger.Debug("failed to renice command", "pid", pid, "error", err)
	}
}

func openStdout(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{io.Discard}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.FilePerm) //nolint:gosec // G304: declared node output
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open stdout file"), "path", path)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Resolve returns the executable of req, searched in the PATH of the command environment.
func Resolve(req domain.ExecRequest) string {
	name := req.Args[0]
	if strings.ContainsRune(name, filepath.Separator) {
		if !filepath.IsAbs(name) && req.Cwd != "" {
			return filepath.Join(req.Cwd, name)
		}
		return name
	}
	if lp, err := lookPath(name, req.Env); err == nil {
		return lp
	}
	return name
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
