// Package server wires the gophauth server together: storage, token engine,
// services and the gRPC and REST front ends, and runs them until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/keys"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	hs "github.com/dmitrijs2005/gophauth/internal/server/http"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	guard    *auth.Guard
	services transport.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var opts []repomanager.Option
	if c.RefreshTokenStore == config.StoreRedis {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		opts = append(opts, repomanager.WithRefreshTokenStore(refreshtokens.NewRedisRepository(app.redis)))
	}

	m := repomanager.NewPostgresRepositoryManager(opts...)
	if err := m.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	loader := keys.NewLoader(keys.S3Settings{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
	engine, err := auth.LoadEngine(ctx, auth.EngineSettings{
		Algorithm:      c.JWTAlgorithm,
		Secret:         c.JWTSecretKey,
		PrivateKeyPath: c.JWTPrivateKeyPath,
		PublicKeyPath:  c.JWTPublicKeyPath,
	}, loader)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("token engine init error: %w", err)
	}

	hasher := cryptox.NewArgon2Hasher(cryptox.DefaultParams)
	var notifier services.Notifier = services.NewLogNotifier(logger)
	if c.ResetSink == config.ResetSinkStdout {
		logger.Warn(ctx, "reset links are printed to stdout, do not use in production")
		notifier = services.NewWriterNotifier(c.ResetBaseURL, os.Stdout, logger)
	}

	app.guard = auth.NewGuard(engine)
	app.services = transport.Services{
		Auth:   services.NewAuthService(db, m, engine, hasher, logger, c),
		Resets: services.NewPasswordResetService(db, m, hasher, notifier, logger, c),
		Users:  services.NewUserService(db, m, hasher, logger),
		Scopes: services.NewScopeService(db, m, logger),
	}

	logger.Info(ctx, "App initialized", "jwt_algorithm", engine.Algorithm().String(), "refresh_token_store", c.RefreshTokenStore)
	return app, nil
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.guard, app.services)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := hs.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.guard, app.services, app.config.LoginRateLimitRPM)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both front ends until ctx is cancelled, a termination signal
// arrives or one of them fails, then releases storage connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
