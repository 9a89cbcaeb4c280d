package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/matheus3301/classnotes/internal/api"
	"github.com/matheus3301/classnotes/internal/config"
	"github.com/matheus3301/classnotes/internal/rpc"
	"github.com/matheus3301/classnotes/internal/session"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server manages the gRPC server lifecycle of classnotesd.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer creates the gRPC server. It listens on p.Addr, or the
// configured address, when set ("host:port" or "unix:///path"), otherwise
// on the session socket.
func NewServer(
	p Params,
	cfg *config.Daemon,
	logger *zap.Logger,
	authn *api.Authenticator,
	authSvc *api.AuthService,
	docSvc *api.DocumentService,
) (*Server, error) {
	if p.Addr == "" && cfg != nil {
		p.Addr = cfg.Addr
	}
	listener, socketPath, err := listen(p)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(authn.Unary()),
		grpc.ChainStreamInterceptor(authn.Stream()),
	)
	rpc.RegisterAuthServer(srv, authSvc)
	rpc.RegisterDocumentServer(srv, docSvc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{
		grpcServer: srv,
		health:     hs,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

func listen(p Params) (net.Listener, string, error) {
	socketPath := p.SocketPath
	if p.Addr != "" {
		path, ok := strings.CutPrefix(p.Addr, "unix://")
		if !ok {
			l, err := net.Listen("tcp", p.Addr)
			if err != nil {
				return nil, "", fmt.Errorf("listen tcp: %w", err)
			}
			return l, "", nil
		}
		socketPath = path
	}
	if socketPath == "" {
		socketPath = session.SocketPath(p.SessionName)
	}

	// Clean stale socket if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, "", fmt.Errorf("listen unix socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = l.Close()
		return nil, "", fmt.Errorf("chmod socket: %w", err)
	}
	return l, socketPath, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	if s.socketPath != "" {
		return "unix://" + s.socketPath
	}
	return s.listener.Addr().String()
}

// Start begins serving gRPC requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("gRPC server starting", zap.String("addr", s.Addr()))
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s.grpcServer.Serve(s.listener)
}

// Stop performs a graceful shutdown and removes the socket file.
func (s *Server) Stop(_ context.Context) {
	s.logger.Info("gRPC server stopping")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	_ = s.listener.Close()
	if s.socketPath != "" {
		_ = os.Remove(s.socketPath)
	}
}
