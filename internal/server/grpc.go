package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

// ServiceName is the name reported through the gRPC health service.
const ServiceName = "omnipos.crm.v1.CRMService"

// NewGRPCServer registers health and reflection. The health status starts as SERVING.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return srv, hs
}

// RunGRPC serves on lis until ctx is cancelled. Health flips to NOT_SERVING before the drain.
func RunGRPC(ctx context.Context, srv *grpc.Server, hs *health.Server, lis net.Listener, log logger.ZapLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down gRPC server...")
	hs.Shutdown()
	srv.GracefulStop()
	return <-errCh
}
