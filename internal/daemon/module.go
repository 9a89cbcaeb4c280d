package daemon

import (
	"context"

	"github.com/matheus3301/classnotes/internal/api"
	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/config"
	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/lock"
	"github.com/matheus3301/classnotes/internal/logging"
	"github.com/matheus3301/classnotes/internal/session"
	"github.com/matheus3301/classnotes/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const lockName = "classnotesd"

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	SocketPath  string // optional override for testing; empty = use default
	Addr        string // optional listen address; overrides the socket
	Debug       bool
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideLock,
			provideStore,
			provideEngine,
			provideAccounts,
			provideAuthenticator,
			api.NewAuthService,
			api.NewDocumentService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Path:    session.LogPath(p.SessionName, "classnotesd"),
		Console: true,
		Debug:   p.Debug,
	}, zap.String("session", p.SessionName))
}

func provideConfig() (*config.Daemon, error) {
	return config.LoadDaemon()
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring daemon lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName), lockName)
	if err != nil {
		return nil, err
	}
	logger.Info("daemon lock acquired")
	return l, nil
}

// provideStore depends on the lock so two daemons never migrate one file.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *docserver.Engine {
	return docserver.NewEngine(db, b, logger)
}

func provideAccounts(db *store.DB, cfg *config.Daemon) *docserver.Accounts {
	return docserver.NewAccounts(db, cfg.JWTSecret, cfg.TokenTTL)
}

func provideAuthenticator(accounts *docserver.Accounts, logger *zap.Logger) *api.Authenticator {
	return api.NewAuthenticator(accounts, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, cfg *config.Daemon, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("daemon starting", zap.String("environment", cfg.Environment), zap.Duration("token_ttl", cfg.TokenTTL))
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
