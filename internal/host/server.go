package host

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/nucleus/sharepoint-publisher/internal/logging"
)

// Server hosts PublisherService with health checks and reflection.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *logging.Logger
}

// NewServer registers svc on a new gRPC server.
func NewServer(svc PublisherServer, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("grpc")

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingUnary(logger),
			recoveryUnary(logger),
		),
		grpc.ChainStreamInterceptor(
			loggingStream(logger),
			recoveryStream(logger),
		),
	)
	RegisterPublisherServer(gs, svc)

	healthSvc := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, healthSvc)
	healthSvc.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(gs)

	return &Server{grpc: gs, health: healthSvc, logger: logger}
}

// Serve accepts connections on lis until Shutdown.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info(context.Background(), "listening", zap.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Shutdown marks the service NOT_SERVING and drains in-flight calls. When ctx
// expires first the remaining calls are cut off.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn(ctx, "shutdown timeout, forcing stop")
		s.grpc.Stop()
	case <-stopped:
		s.logger.Info(ctx, "server stopped gracefully")
	}
}
