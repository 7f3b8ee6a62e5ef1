package remote_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/popen"
	"go.trai.ch/noderun/internal/adapters/remote"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

type harness struct {
	exec    *mocks.MockExecutor
	logger  *mocks.MockLogger
	metrics *mocks.MockMetrics
	client  *remote.Client
	cancel  context.CancelFunc
	done    chan error
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	return logger
}

func newHarness(t *testing.T, cfg domain.ExecutorConfig) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		exec:    mocks.NewMockExecutor(ctrl),
		logger:  quietLogger(ctrl),
		metrics: mocks.NewMockMetrics(ctrl),
		done:    make(chan error, 1),
	}

	lis := bufconn.Listen(bufSize)
	srv := remote.NewServer(h.exec, remote.NewLifecycle(time.Hour), quietLogger(ctrl))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- srv.ServeListener(ctx, lis) }()

	client, err := remote.Dial("/bufnet", cfg, h.logger, h.metrics,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	h.client = client

	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		<-h.done
	})
	return h
}

func TestRemote_StreamsStderrAndControlMessages(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{TextFileBusyRetries: 3})
	req := domain.ExecRequest{
		Args:    []string{"cc", "-c", "a.c"},
		Env:     []string{"PATH=/usr/bin", "LANG=C"},
		Cwd:     "/src",
		Stdout:  "/build/a.out",
		Nice:    5,
		Network: "full",
	}

	h.exec.EXPECT().Run(gomock.Any(), req, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.ExecRequest, sink ports.ProgressSink) (domain.ExecResult, error) {
			sink.SetStatus("compiling")
			sink.AppendTag("remote")
			sink.Display("step 1|2\n")
			return domain.ExecResult{Stderr: "a.c:1: warning\nno newline", ExitCode: 2}, nil
		})

	sink := mocks.NewMockProgressSink(gomock.NewController(t))
	gomock.InOrder(
		sink.EXPECT().SetStatus("compiling"),
		sink.EXPECT().AppendTag("remote"),
		sink.EXPECT().Display("step 1|2\n"),
	)

	res, err := h.client.Run(t.Context(), req, sink)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecResult{Stderr: "a.c:1: warning\nno newline", ExitCode: 2}, res)
}

func TestRemote_SpawnError(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{TextFileBusyRetries: 3})
	h.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExecResult{}, errors.New("fork/exec nope: no such file or directory"))

	res, err := h.client.Run(t.Context(), domain.ExecRequest{Args: []string{"nope"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "Process was not created: fork/exec nope: no such file or directory\n", res.Stderr)
}

func TestRemote_TextFileBusyRetries(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{TextFileBusyRetries: 3, TextFileBusyRetryDelay: time.Millisecond})
	h.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExecResult{}, domain.ErrTextFileBusy).Times(3)
	h.logger.EXPECT().Warn("Text file busy, retrying...", "cmd", "/tmp/tool", "attempt", gomock.Any()).Times(2)
	h.metrics.EXPECT().TextFileBusyRetry().Times(2)

	_, err := h.client.Run(t.Context(), domain.ExecRequest{Args: []string{"/tmp/tool"}}, nil)
	require.ErrorIs(t, err, domain.ErrTextFileBusy)
}

func TestRemote_TextFileBusyRecovers(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{TextFileBusyRetries: 3, TextFileBusyRetryDelay: time.Millisecond})
	gomock.InOrder(
		h.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ExecResult{}, domain.ErrTextFileBusy),
		h.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ExecResult{Stderr: "done\n"}, nil),
	)
	h.logger.EXPECT().Warn("Text file busy, retrying...", "cmd", "/tmp/tool", "attempt", 1)
	h.metrics.EXPECT().TextFileBusyRetry()

	res, err := h.client.Run(t.Context(), domain.ExecRequest{Args: []string{"/tmp/tool"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecResult{Stderr: "done\n"}, res)
}

func TestRemote_ClientCancellation(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{})
	started := make(chan struct{})
	stopped := make(chan struct{})
	h.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.ExecRequest, _ ports.ProgressSink) (domain.ExecResult, error) {
			close(started)
			<-ctx.Done()
			close(stopped)
			return domain.ExecResult{}, domain.ErrCancelled
		})

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		<-started
		cancel()
	}()

	_, err := h.client.Run(ctx, domain.ExecRequest{Args: []string{"sleep", "100"}}, nil)
	require.ErrorIs(t, err, domain.ErrCancelled)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("server command was not cancelled")
	}
}

func TestRemote_ServerShutdownFailsCommand(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{})
	h.logger.EXPECT().Warn("executor shut down while running a command", gomock.Any())
	started := make(chan struct{})
	h.exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.ExecRequest, _ ports.ProgressSink) (domain.ExecResult, error) {
			close(started)
			<-ctx.Done()
			return domain.ExecResult{}, domain.ErrCancelled
		})

	go func() {
		<-started
		h.cancel()
	}()

	res, err := h.client.Run(t.Context(), domain.ExecRequest{Args: []string{"sleep", "100"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecResult{ExitCode: 1}, res)
}

func TestRemote_Ping(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{})
	require.NoError(t, h.client.Ping(t.Context()))
}

func TestRemote_EmptyCommand(t *testing.T) {
	h := newHarness(t, domain.ExecutorConfig{})
	_, err := h.client.Run(t.Context(), domain.ExecRequest{}, nil)
	require.ErrorContains(t, err, domain.ErrProcessStartFailed.Error())
}

func TestDial_NoServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	client, err := remote.Dial(filepath.Join(t.TempDir(), "missing.sock"), domain.ExecutorConfig{},
		quietLogger(ctrl), mocks.NewMockMetrics(ctrl))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	require.ErrorContains(t, client.Ping(ctx), domain.ErrRemoteExecutorUnavailable.Error())
}

func TestServer_ServeUnixSocket(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir, err := os.MkdirTemp("", "nr")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	socket := filepath.Join(dir, "state", "executor.sock")

	srv := remote.NewServer(mocks.NewMockExecutor(ctrl), remote.NewLifecycle(time.Hour), quietLogger(ctrl))
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, socket) }()

	client, err := remote.Dial(socket, domain.ExecutorConfig{}, quietLogger(ctrl), mocks.NewMockMetrics(ctrl))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	require.Eventually(t, func() bool {
		return client.Ping(t.Context()) == nil
	}, 5*time.Second, 20*time.Millisecond)

	info, err := os.Stat(socket)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.SocketPerm), info.Mode().Perm())

	cancel()
	require.NoError(t, <-done)
	assert.NoFileExists(t, socket)
}

func TestServer_IdleShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	lc := remote.NewLifecycle(time.Hour)
	srv := remote.NewServer(mocks.NewMockExecutor(ctrl), lc, quietLogger(ctrl))

	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(t.Context(), bufconn.Listen(bufSize)) }()

	lc.Shutdown()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRemote_TextFileBusyRetriedOnlyByClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := domain.ExecutorConfig{
		TextFileBusyRetries:    3,
		TextFileBusyRetryDelay: time.Millisecond,
		TerminateTimeout:       time.Second,
	}

	// Kept open for writing, the binary cannot be executed.
	tool := filepath.Join(t.TempDir(), "tool")
	f, err := os.OpenFile(tool, os.O_CREATE|os.O_WRONLY, 0o755)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	_, err = f.WriteString("#!/bin/sh\nexit 0\n")
	require.NoError(t, err)

	serverLogger := quietLogger(ctrl)
	serverLogger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	// Any retry metric on the service side fails the test.
	serverMetrics := mocks.NewMockMetrics(ctrl)
	executor := popen.NewExecutor(remote.ServiceConfig(cfg), serverLogger, serverMetrics)

	lis := bufconn.Listen(bufSize)
	srv := remote.NewServer(executor, remote.NewLifecycle(time.Hour), quietLogger(ctrl))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, lis) }()

	logger := quietLogger(ctrl)
	logger.EXPECT().Warn("Text file busy, retrying...", "cmd", tool, "attempt", gomock.Any()).Times(2)
	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().TextFileBusyRetry().Times(2)

	client, err := remote.Dial("/bufnet", cfg, logger, metrics,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		<-done
	})

	_, err = client.Run(t.Context(), domain.ExecRequest{Args: []string{tool}, Env: []string{"PATH=/usr/bin:/bin"}}, nil)
	require.ErrorIs(t, err, domain.ErrTextFileBusy)
}

func TestServiceConfig(t *testing.T) {
	cfg := domain.ExecutorConfig{TextFileBusyRetries: 10, TextFileBusyRetryDelay: time.Second}

	got := remote.ServiceConfig(cfg)
	assert.Equal(t, 1, got.TextFileBusyRetries)
	assert.Equal(t, time.Second, got.TextFileBusyRetryDelay)
	assert.Equal(t, 10, cfg.TextFileBusyRetries)
}
