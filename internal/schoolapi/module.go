package schoolapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/matheus3301/classnotes/internal/config"
	"github.com/matheus3301/classnotes/internal/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds command-line settings for the fx module.
type Params struct {
	LogPath string
	Addr    string // overrides SCHOOL_ADDR when set
	Debug   bool
}

// Module returns the fx module for schoold.
func Module(p Params) fx.Option {
	return fx.Module("schoolapi",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			config.LoadSchool,
			provideRepository,
			NewAccounts,
			NewHandler,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(logging.Options{Path: p.LogPath, Console: true, Debug: p.Debug})
}

// OpenRepository opens the storage backend selected by cfg and migrates it.
func OpenRepository(ctx context.Context, cfg *config.School, logger *zap.Logger) (Repository, error) {
	if cfg.Storage == "memory" {
		logger.Warn("using in-memory storage; data is lost on exit")
		return NewMemoryRepository(), nil
	}
	repo, err := OpenPostgres(ctx, cfg.DBDSN, logger)
	if err != nil {
		return nil, err
	}
	version, err := Migrate(ctx, repo.Pool())
	if err != nil {
		repo.Close()
		return nil, err
	}
	logger.Info("migrations applied", zap.Int64("version", version))
	return repo, nil
}

func provideRepository(cfg *config.School, logger *zap.Logger) (Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return OpenRepository(ctx, cfg, logger)
}

// Server is the HTTP listener for Handler.
type Server struct {
	http     *http.Server
	listener net.Listener
	logger   *zap.Logger
}

func NewServer(p Params, cfg *config.School, h *Handler, logger *zap.Logger) (*Server, error) {
	addr := p.Addr
	if addr == "" {
		addr = cfg.Addr
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		http: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: lis,
		logger:   logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start serves until Stop. It blocks.
func (s *Server) Start() error {
	s.logger.Info("school API listening", zap.String("addr", s.Addr()))
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	// Shutdown only closes listeners that reached Serve.
	_ = s.listener.Close()
	return err
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, repo Repository, cfg *config.School, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("schoold starting", zap.String("environment", cfg.Environment), zap.String("storage", cfg.Storage))
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("HTTP server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("error stopping HTTP server", zap.Error(err))
			}
			repo.Close()
			logger.Info("schoold stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
