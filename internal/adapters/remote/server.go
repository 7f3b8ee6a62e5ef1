package remote

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/engine/protocol"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements the execution service.
type Server struct {
	executor   ports.Executor
	lifecycle  *Lifecycle
	logger     ports.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer creates a server running commands with executor.
func NewServer(executor ports.Executor, lifecycle *Lifecycle, logger ports.Logger) *Server {
	s := &Server{
		executor:   executor,
		lifecycle:  lifecycle,
		logger:     logger,
		grpcServer: grpc.NewServer(),
		health:     health.NewServer(),
	}
	s.grpcServer.RegisterService(&serviceDesc, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve listens on the Unix socket at socketPath until ctx is done or the server was idle for
// the lifecycle timeout.
func (s *Server) Serve(ctx context.Context, socketPath string) error {
	if err := os.MkdirAll(filepath.Dir(socketPath), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrExecutorServerFailed.Error()), "path", socketPath)
	}

	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return zerr.Wrap(err, "failed to remove stale socket")
	}

	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "unix", socketPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrExecutorServerFailed.Error()), "path", socketPath)
	}
	defer func() { _ = os.Remove(socketPath) }()

	if err := os.Chmod(socketPath, domain.SocketPerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(err, "failed to set socket permissions")
	}

	s.logger.Info("executor listening", "socket", socketPath, "pid", os.Getpid())
	return s.ServeListener(ctx, lis)
}

// ServeListener serves on lis until ctx is done or the lifecycle shuts down.
// Cancelling ctx stops running commands; an idle shutdown waits for them.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.Stop()
		return nil
	case <-s.lifecycle.ShutdownChan():
		s.logger.Info("executor idle, shutting down")
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		if err != nil {
			return zerr.Wrap(err, domain.ErrExecutorServerFailed.Error())
		}
		return nil
	}
}

// Run executes one command and streams its stderr lines followed by its exit code.
func (s *Server) Run(msg *structpb.Struct, stream grpc.ServerStream) error {
	s.lifecycle.Begin()
	defer s.lifecycle.End()

	req, err := decodeRequest(msg)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	var sendErr error
	send := func(line string) {
		if sendErr == nil {
			sendErr = stream.SendMsg(lineItem(line))
		}
	}

	res, err := s.executor.Run(stream.Context(), req, protocol.NewEncoder(send))
	switch {
	case errors.Is(err, domain.ErrCancelled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, domain.ErrTextFileBusy):
		res = domain.ExecResult{Stderr: textFileBusyPrefix + "\n", ExitCode: 1}
	case err != nil:
		s.logger.Debug("failed to spawn command", "cmd", req.Args[0], "error", err)
		res = domain.ExecResult{Stderr: notCreatedPrefix + err.Error() + "\n", ExitCode: 1}
	}

	_ = protocol.ReadLines(strings.NewReader(res.Stderr), send)
	if sendErr != nil {
		return sendErr
	}
	return stream.SendMsg(exitItem(res.ExitCode))
}
