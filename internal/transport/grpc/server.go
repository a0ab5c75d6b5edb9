// Package grpc serves gRPC health checking and reflection next to the HTTP API.
package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the health-checked service name.
const ServiceName = "inventory.v1.InventoryService"

// ReadinessCheck reports whether the backing store can serve requests.
type ReadinessCheck func(ctx context.Context) error

// Server wraps a grpc.Server with a health service.
type Server struct {
	*grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewServer creates a gRPC server with health and reflection registered.
func NewServer(logger *zap.Logger) *Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	// Enable reflection (for grpcurl and debugging)
	reflection.Register(gs)

	return &Server{Server: gs, health: hs, logger: logger}
}

// SetServing updates the status reported for ServiceName and the server as a whole.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// WatchReadiness runs check every interval until ctx ends and mirrors the
// result into the health status.
func (s *Server) WatchReadiness(ctx context.Context, interval time.Duration, check ReadinessCheck) {
	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := check(pctx); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			s.SetServing(false)
			return
		}
		s.SetServing(true)
	}

	probe()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// Shutdown marks the server not serving and stops it gracefully.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
