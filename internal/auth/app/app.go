package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/actionprice/auth/internal/auth/http"
	"github.com/actionprice/auth/internal/auth/metrics"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/internal/auth/store"
	redisstore "github.com/actionprice/auth/internal/auth/store/drivers/redis"
	"github.com/actionprice/auth/internal/auth/store/drivers/sqlite"
	"github.com/actionprice/auth/pkg/cryptox"
	"github.com/actionprice/auth/pkg/jwtx"
	"github.com/actionprice/auth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	credentials store.CredentialStore // nil when refresh records live in db
	codec       *jwtx.Codec
	registry    *prometheus.Registry
	metrics     *metrics.Metrics

	// Services
	userService *service.UserService
	sessions    *service.SessionService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	secret, err := LoadSigningSecret(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	if app.codec, err = jwtx.NewCodec(secret, jwtx.WithIssuer(cfg.Issuer)); err != nil {
		return nil, fmt.Errorf("failed to build token codec: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.initCredentialStore(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	app.initServices()

	if err := app.seedAdmin(ctx); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"credential_store", app.cfg.CredentialStore,
	)

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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

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

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.credentials != nil {
		if err := app.credentials.Close(); err != nil {
			app.logger.Error("error closing credential store", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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

// initCredentialStore connects the refresh record backend when it is not the
// database.
func (app *Application) initCredentialStore(ctx context.Context) error {
	if app.cfg.CredentialStore != CredentialStoreRedis {
		return nil
	}

	rs, err := redisstore.Dial(ctx, redisstore.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
		Prefix:   app.cfg.RedisPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis credential store: %w", err)
	}
	app.credentials = rs

	app.logger.Info("redis credential store connected", "addr", app.cfg.RedisAddr, "prefix", app.cfg.RedisPrefix)
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	var records store.RefreshRecords = app.db.RefreshRecords()
	if app.credentials != nil {
		records = app.credentials
	}

	refresh := service.NewRefreshTokenAuthority(app.codec, records, app.cfg.RefreshTTL, app.cfg.RefreshRotateBelow)
	refresh.Metrics = app.metrics

	app.userService = &service.UserService{Store: app.db}
	app.sessions = &service.SessionService{
		Users:   app.userService,
		Access:  service.NewAccessTokenAuthority(app.codec, app.cfg.AccessTTL),
		Refresh: refresh,
		Metrics: app.metrics,
	}
}

// seedAdmin creates the first account on an empty database.
func (app *Application) seedAdmin(ctx context.Context) error {
	created, generated, err := app.userService.EnsureAdmin(ctx, app.cfg.AdminUsername, app.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	switch {
	case !created:
	case generated != "":
		// Only chance to see it; it is not stored anywhere in clear text.
		app.logger.Warn("admin user created with a generated password",
			"username", app.cfg.AdminUsername,
			"password", generated,
		)
	default:
		app.logger.Info("admin user created", "username", app.cfg.AdminUsername)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.registry, app.metrics, app.logger)

	// Wire services to router
	router.Sessions = app.sessions
	router.UserService = app.userService
	router.Credentials = app.credentials // nil unless redis is configured
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
