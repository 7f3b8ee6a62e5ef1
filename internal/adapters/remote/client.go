package remote

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/engine/protocol"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client implements ports.Executor on top of the execution service.
type Client struct {
	conn    *grpc.ClientConn
	cfg     domain.ExecutorConfig
	logger  ports.Logger
	metrics ports.Metrics
}

// Dial creates a client of the service listening on the Unix socket at socketPath.
// The connection is established lazily on the first call.
func Dial(socketPath string, cfg domain.ExecutorConfig, logger ports.Logger, metrics ports.Metrics, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient("unix://"+socketPath, opts...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRemoteExecutorUnavailable.Error()), "socket", socketPath)
	}
	return &Client{conn: conn, cfg: cfg, logger: logger, metrics: metrics}, nil
}

// Ping reports whether the service is serving.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return zerr.Wrap(err, domain.ErrRemoteExecutorUnavailable.Error())
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return zerr.With(domain.ErrRemoteExecutorUnavailable, "status", resp.GetStatus().String())
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Run executes req on the service. A command the service could not spawn because its binary was
// busy is attempted TextFileBusyRetries times before domain.ErrTextFileBusy is returned.
func (c *Client) Run(ctx context.Context, req domain.ExecRequest, sink ports.ProgressSink) (domain.ExecResult, error) {
	if len(req.Args) == 0 {
		return domain.ExecResult{}, zerr.Wrap(errors.New("empty command"), domain.ErrProcessStartFailed.Error())
	}

	attempts := max(1, c.cfg.TextFileBusyRetries)
	for attempt := 1; ; attempt++ {
		res, err := c.runProcess(ctx, req, sink)
		if err != nil || res.ExitCode == 0 || !strings.HasPrefix(res.Stderr, textFileBusyPrefix) {
			return res, err
		}
		// The service logs the processes holding the binary, the client may not see them.
		if attempt >= attempts {
			return domain.ExecResult{}, domain.ErrTextFileBusy
		}

		c.logger.Warn("Text file busy, retrying...", "cmd", req.Args[0], "attempt", attempt)
		c.metrics.TextFileBusyRetry()

		select {
		case <-ctx.Done():
			return domain.ExecResult{}, domain.ErrCancelled
		case <-time.After(c.cfg.TextFileBusyRetryDelay):
		}
	}
}

func (c *Client) runProcess(ctx context.Context, req domain.ExecRequest, sink ports.ProgressSink) (domain.ExecResult, error) {
	msg, err := encodeRequest(req)
	if err != nil {
		return domain.ExecResult{}, zerr.Wrap(err, domain.ErrProcessStartFailed.Error())
	}

	parser := protocol.NewParser(sink)
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], runMethod)
	if err != nil {
		return c.streamError(ctx, err)
	}
	if err := stream.SendMsg(msg); err != nil && !errors.Is(err, io.EOF) {
		return c.streamError(ctx, err)
	}
	if err := stream.CloseSend(); err != nil {
		return c.streamError(ctx, err)
	}

	for {
		item := new(structpb.Struct)
		if err := stream.RecvMsg(item); err != nil {
			if errors.Is(err, io.EOF) {
				err = status.Error(codes.Unavailable, "stream closed without exit code")
			}
			return c.streamError(ctx, err)
		}
		fields := item.GetFields()
		if code, ok := fields["exit_code"]; ok {
			return domain.ExecResult{Stderr: parser.Stderr(), ExitCode: int(code.GetNumberValue())}, nil
		}
		parser.Line(fields["line"].GetStringValue())
	}
}

// streamError maps a failed call. A server going away mid command fails the command with exit
// code 1 and no stderr, which downstream cannot tell apart from a real command failure.
func (c *Client) streamError(ctx context.Context, err error) (domain.ExecResult, error) {
	if ctx.Err() != nil {
		return domain.ExecResult{}, domain.ErrCancelled
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.Canceled:
		c.logger.Warn("executor shut down while running a command", "error", err)
		return domain.ExecResult{ExitCode: 1}, nil
	default:
		return domain.ExecResult{}, zerr.Wrap(err, domain.ErrRemoteExecutorUnavailable.Error())
	}
}
