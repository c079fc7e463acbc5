// Package server wires storage, change notification, services and the
// gRPC and HTTP endpoints of the journal server, and runs them until a
// shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/health"
	"github.com/dmitrijs2005/gophjournal/internal/server/notify"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"

	gs "github.com/dmitrijs2005/gophjournal/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	closers      []io.Closer
	checks       map[string]health.Check
	userService  *services.UserService
	entryService *services.EntryService
}

// openPostgres is replaced in tests.
var openPostgres = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := openPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{
		config:  c,
		logger:  logger,
		db:      db,
		closers: []io.Closer{db},
		checks:  map[string]health.Check{"postgres": db.PingContext},
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	notifier, err := app.newNotifier(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.userService = services.NewUserService(db, rm, c)
	app.entryService = services.NewEntryService(db, rm, notifier, c, logger)
	return app, nil
}

// newNotifier uses Redis pub/sub when configured so several server
// instances see each other's changes, and an in-process notifier otherwise.
func (app *App) newNotifier(ctx context.Context) (notify.Notifier, error) {
	if app.config.RedisURL == "" {
		app.logger.Info(ctx, "Using in-process change notification")
		return notify.NewMemory(), nil
	}

	client, err := notify.NewRedisClient(ctx, app.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client)
	app.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	app.logger.Info(ctx, "Using redis change notification")
	return notify.NewRedis(client), nil
}

// Close releases the database and redis connections.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i].Close())
	}
	app.closers = nil
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.entryService, app.config.SecretKey)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := health.NewServer(app.config.EndpointAddrHTTP, app.logger, app.checks)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is done, a shutdown signal arrives or one of the
// servers fails, then closes the app.
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

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
