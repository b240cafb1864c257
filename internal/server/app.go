// Package server initializes and runs the gophgram server. It opens the
// database, applies migrations, wires the account, token and post services
// and starts the REST endpoint with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophgram/internal/accesskey"
	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/config"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgram/internal/server/rest"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/jmoiron/sqlx"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sqlx.DB
	cache       *services.IdentityCache
	userService *services.UserService
	postService *services.PostService
	gate        *services.AuthGate
}

// NewApp validates c, connects to storage and runs migrations. A
// configuration problem is reported as common.ErrKeyMisconfiguration.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app, err := wire(ctx, c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return app, nil
}

func wire(ctx context.Context, c *config.Config, logger logging.Logger, db *sqlx.DB, rm repomanager.RepositoryManager) (*App, error) {
	hasher, err := cryptox.NewHasher(c.KDFIterations, c.KDFKeyLength, c.HashWorkers)
	if err != nil {
		return nil, err
	}

	format, err := services.NewTokenFormat(c)
	if err != nil {
		return nil, err
	}

	cache, err := services.NewIdentityCache(ctx, c.IdentityCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("identity cache: %w", err)
	}

	keys := accesskey.NewGenerator(c.AccessKeyMaxAttempts)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		cache:       cache,
		userService: services.NewUserService(db, rm, hasher, keys, format, cache, logger),
		postService: services.NewPostService(db, rm, keys, logger),
		gate:        services.NewAuthGate(db, rm, hasher, format, cache, c.TokenMaxAge, logger),
	}, nil
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

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewRESTServer(app.config.EndpointAddr, app.logger, app.userService, app.postService, app.gate,
		rest.Options{RequestTimeout: app.config.RequestTimeout})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the database and cache.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.cache.Close(); err != nil {
		app.logger.Error(ctx, "cache close", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
