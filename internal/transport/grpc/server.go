package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health check name reported for the booking API.
const ServiceName = "deskbook.Bookings"

// OpsServer exposes gRPC health checks and reflection next to the HTTP API so
// orchestrators can check the process without a token.
type OpsServer struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger
}

func NewOpsServer(requestTimeout time.Duration, log *slog.Logger) *OpsServer {
	if log == nil {
		log = slog.Default()
	}
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(defaultRequestTimeoutInterceptor(requestTimeout)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &OpsServer{
		srv:    srv,
		health: hs,
		log:    log.With(slog.String("component", "grpc.ops")),
	}
}

// SetServing flips both the overall and the booking service status.
func (s *OpsServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	s.log.Info("health status changed", slog.String("status", st.String()))
}

func (s *OpsServer) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Shutdown marks the server as not serving and waits up to timeout for
// in-flight RPCs before forcing a stop.
func (s *OpsServer) Shutdown(timeout time.Duration) {
	s.log.Info("shutting down grpc server", slog.Duration("timeout", timeout))
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.log.Info("grpc server stopped")
	case <-timer.C:
		s.log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.srv.Stop()
	}
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}
