// Package rpc serves draws over gRPC. Messages are google.protobuf.Struct so
// the service needs no generated code.
package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/gacha-sim/internal/app"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/logger"
)

const (
	ServiceName = "gacha.v1.GachaService"
	DrawMethod  = "/" + ServiceName + "/Draw"
)

// Drawer is the part of app.Service the gRPC layer needs.
type Drawer interface {
	Draw(ctx context.Context, userID string, count int) (*app.DrawOutcome, error)
}

// GachaServer implements gacha.v1.GachaService.
type GachaServer interface {
	Draw(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type gachaServer struct {
	svc Drawer
}

// NewGachaServer adapts svc to the gRPC service.
func NewGachaServer(svc Drawer) GachaServer {
	return &gachaServer{svc: svc}
}

// Draw expects {"user": string, "count": number}; count defaults to 1.
func (s *gachaServer) Draw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	user := fields["user"].GetStringValue()
	count := 1
	if v, ok := fields["count"]; ok {
		n := v.GetNumberValue()
		if n != float64(int(n)) {
			return nil, status.Errorf(codes.InvalidArgument, "count must be an integer, got %v", n)
		}
		count = int(n)
	}

	out, err := s.svc.Draw(ctx, user, count)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(out)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, gacha.ErrInvalidDrawCount), errors.Is(err, app.ErrInvalidUser):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.Error("grpc draw failed", zap.Error(err))
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

func drawHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GachaServer).Draw(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DrawMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GachaServer).Draw(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes gacha.v1.GachaService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GachaServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Draw", Handler: drawHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gacha/v1/gacha.proto",
}

// NewServer creates a gRPC server with the gacha and health services
// registered.
func NewServer(svc Drawer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(logUnary))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, NewGachaServer(svc))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Draw calls gacha.v1.GachaService/Draw on conn.
func Draw(ctx context.Context, conn grpc.ClientConnInterface, user string, count int) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{"user": user, "count": count})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, DrawMethod, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	logger.Debug("grpc",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
	)
	return resp, err
}
