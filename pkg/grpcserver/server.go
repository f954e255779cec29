// Package grpcserver builds the instrumented gRPC server and its health service.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/middleware"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps a grpc.Server with its health service
type Server struct {
	*grpc.Server
	health *health.Server
}

// New creates a gRPC server with tracing, logging, recovery and auth interceptors
func New(tokens middleware.TokenValidator, extra ...grpc.UnaryServerInterceptor) *Server {
	interceptors := append([]grpc.UnaryServerInterceptor{
		RecoveryInterceptor,
		LoggingInterceptor,
		AuthInterceptor(tokens),
	}, extra...)

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// Register reflection service (for grpcurl and grpc tools)
	reflection.Register(srv)

	return &Server{Server: srv, health: hs}
}

// Health exposes the health service so callers can flip serving status
func (s *Server) Health() *health.Server {
	return s.health
}

// ListenAndServe listens on addr until the server is stopped
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.Logger.Info().Str("addr", addr).Msg("gRPC server started")
	return s.Serve(lis)
}

// WatchHealth pings deps every interval and updates the overall serving status
// until ctx is done.
func (s *Server) WatchHealth(ctx context.Context, interval time.Duration, deps Pinger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err := deps.Ping(pingCtx); err != nil {
			logger.Warn(ctx).Err(err).Msg("Health check failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		s.health.SetServingStatus("", status)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
