// Package server initializes and runs the backend application. It wires the
// configuration, database, repositories, services and the HTTP transport,
// and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/alivecn/funarcade/internal/logging"
	"github.com/alivecn/funarcade/internal/server/config"
	"github.com/alivecn/funarcade/internal/server/httpapi"
	"github.com/alivecn/funarcade/internal/server/repositories/repomanager"
	"github.com/alivecn/funarcade/internal/server/services"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	userService   *services.UserService
	postService   *services.PostService
	avatarService *services.AvatarService
}

func NewApp(cfg *config.Config) (*App, error) {

	// Refusing to run without a signing key beats silently issuing tokens
	// anyone can forge.
	if cfg.SecretKey == "" {
		return nil, errors.New("JWT secret is not configured")
	}

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		repomanager:   rm,
		userService:   services.NewUserService(db, rm, cfg),
		postService:   services.NewPostService(db, rm),
		avatarService: services.NewAvatarService(cfg),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// prepareStorage migrates the schema and seeds the admin account.
func (app *App) prepareStorage(ctx context.Context) error {

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	if err := app.userService.BootstrapAdmin(ctx); err != nil {
		return fmt.Errorf("admin bootstrap error: %w", err)
	}

	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config, app.logger, app.userService, app.postService, app.avatarService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.prepareStorage(ctx); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "Error closing db", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
