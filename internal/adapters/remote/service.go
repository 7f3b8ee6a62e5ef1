// Package remote runs node commands through an out-of-process execution service.
// The service is a gRPC server on a Unix domain socket that spawns commands with the popen
// executor and streams their stderr back to the client.
package remote

import (
	"errors"

	"go.trai.ch/noderun/internal/core/domain"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified name of the execution service.
	ServiceName = "noderun.executor.v1.Executor"

	runMethod = "/" + ServiceName + "/Run"

	// textFileBusyPrefix starts the stderr of a command the server could not spawn because its
	// binary was busy.
	textFileBusyPrefix = "Process was not created: Text file busy"
	notCreatedPrefix   = "Process was not created: "
)

// ServiceConfig returns the configuration of the executor behind the service. The service
// spawns a command once and reports a busy binary, so the client alone retries.
func ServiceConfig(cfg domain.ExecutorConfig) domain.ExecutorConfig {
	cfg.TextFileBusyRetries = 1
	return cfg
}

// runServer is implemented by the service handler.
type runServer interface {
	Run(req *structpb.Struct, stream grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*runServer)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    "Run",
		Handler:       runHandler,
		ServerStreams: true,
	}},
	Metadata: "noderun/executor/v1/executor.proto",
}

func runHandler(srv any, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(runServer).Run(req, stream)
}

func encodeRequest(req domain.ExecRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"args":    stringList(req.Args),
		"env":     stringList(req.Env),
		"cwd":     req.Cwd,
		"stdout":  req.Stdout,
		"nice":    req.Nice,
		"network": req.Network,
	})
}

func decodeRequest(s *structpb.Struct) (domain.ExecRequest, error) {
	fields := s.GetFields()
	req := domain.ExecRequest{
		Args:    fromList(fields["args"]),
		Env:     fromList(fields["env"]),
		Cwd:     fields["cwd"].GetStringValue(),
		Stdout:  fields["stdout"].GetStringValue(),
		Nice:    int(fields["nice"].GetNumberValue()),
		Network: fields["network"].GetStringValue(),
	}
	if len(req.Args) == 0 {
		return req, errors.New("request without args")
	}
	return req, nil
}

func lineItem(line string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"line": structpb.NewStringValue(line),
	}}
}

func exitItem(code int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"exit_code": structpb.NewNumberValue(float64(code)),
	}}
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func fromList(v *structpb.Value) []string {
	values := v.GetListValue().GetValues()
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, item := range values {
		out[i] = item.GetStringValue()
	}
	return out
}
