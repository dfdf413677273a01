package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/creatorhub/support-backend/pkg/logger"
	"github.com/creatorhub/support-backend/services/payment/internal/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Service names reported by the health server
const (
	StripeService   = "stripe"
	RazorpayService = "razorpay"
)

type Server struct {
	config     *config.Config
	logger     *zap.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer creates the gRPC server with the health service registered.
// Razorpay reports NOT_SERVING when its credentials are missing.
func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(logger.NewGrpcUnaryServerInterceptor(log)),
		grpc.StreamInterceptor(logger.NewGrpcStreamServerInterceptor(log)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(StripeService, healthpb.HealthCheckResponse_SERVING)
	if cfg.Razorpay.Configured() {
		healthServer.SetServingStatus(RazorpayService, healthpb.HealthCheckResponse_SERVING)
	} else {
		healthServer.SetServingStatus(RazorpayService, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	if cfg.Service.Environment != "production" {
		reflection.Register(grpcServer)
	}

	return &Server{
		config:     cfg,
		logger:     log,
		grpcServer: grpcServer,
		health:     healthServer,
	}
}

func (s *Server) Start() error {
	addr := s.config.Server.GRPC.Addr()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.logger.Info("Starting gRPC server", zap.String("address", addr))
	return s.Serve(listener)
}

func (s *Server) Serve(listener net.Listener) error {
	return s.grpcServer.Serve(listener)
}

// Shutdown marks every service NOT_SERVING and drains in-flight calls
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.grpcServer.Stop()
		return ctx.Err()
	}
}
