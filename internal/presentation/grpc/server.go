package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/bibbank/credit-risk-service/pkg/auth"
	"github.com/bibbank/credit-risk-service/pkg/tlsutil"
)

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Server wraps the gRPC server with credit risk handlers.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	address    string
}

// NewServer creates a new gRPC server. A nil validator disables bearer
// authentication.
func NewServer(handler *CreditRiskHandler, cfg ServerConfig, validator auth.TokenValidator, logger *slog.Logger) (*Server, error) {
	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(logger)}
	if validator != nil {
		interceptors = append(interceptors, auth.UnaryAuthInterceptor(validator, []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		}))
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, err
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterCreditRiskServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
		address:    cfg.Address,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting",
		slog.String("address", listener.Addr().String()),
	)
	return s.grpcServer.Serve(listener)
}

// Stop marks the service as not serving and gracefully stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.DebugContext(ctx, "grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
