package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/canteenhq/canteen/internal/canteen/http"
	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/internal/canteen/store/drivers/postgres"
	"github.com/canteenhq/canteen/internal/canteen/store/drivers/sqlite"
	"github.com/canteenhq/canteen/pkg/jwtx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the canteen service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	tokens *jwtx.TokenManager
	hub    *notify.Hub

	// Services
	authService         *service.AuthService
	allowanceService    *service.AllowanceService
	transferService     *service.TransferService
	orderService        *service.OrderService
	menuService         *service.MenuService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "canteen",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		hub: notify.NewHub(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initTokens(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if cfg.AdminEmail != "" {
		if err := app.authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, cfg.AdminEmpCode); err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("canteen service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down canteen service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("canteen service stopped")
	return nil
}

// initDatabase initializes the store and applies migrations. A postgres DSN
// selects the pgx driver; otherwise the service runs on a local sqlite file.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	if app.cfg.DatabaseURL != "" {
		db, err = postgres.NewStore(context.Background(), app.cfg.DatabaseURL)
	} else {
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initTokens sets up the JWT token manager. Without a configured secret a
// random one is generated, which invalidates sessions on restart; fine for
// dev, logged loudly so it never reaches prod.
func (app *Application) initTokens() error {
	secret := app.cfg.TokenSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate token secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		app.logger.Warn("CANTEEN_TOKEN_SECRET not set, using a random secret; sessions will not survive restarts")
	}

	app.tokens = jwtx.NewTokenManager(secret, app.cfg.Issuer, app.cfg.TokenTTL)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	loc, err := time.LoadLocation(app.cfg.ResetTimezone)
	if err != nil {
		return fmt.Errorf("invalid CANTEEN_RESET_TIMEZONE %q: %w", app.cfg.ResetTimezone, err)
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokens,
	}
	app.allowanceService = &service.AllowanceService{
		Store:    app.db,
		Location: loc,
	}
	app.transferService = &service.TransferService{
		Store: app.db,
		Hub:   app.hub,
	}
	app.orderService = &service.OrderService{
		Store: app.db,
		Hub:   app.hub,
	}
	app.menuService = &service.MenuService{
		Store: app.db,
		Hub:   app.hub,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.hub,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.AllowanceService = app.allowanceService
	router.TransferService = app.transferService
	router.OrderService = app.orderService
	router.MenuService = app.menuService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server. WriteTimeout stays unset because the watch
	// endpoints hold their connections open.
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
