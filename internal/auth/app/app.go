package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openmotive/authd/internal/auth/policy"
	"github.com/openmotive/authd/internal/auth/scope"
	"github.com/openmotive/authd/internal/auth/service"
	"github.com/openmotive/authd/internal/auth/store"
	"github.com/openmotive/authd/internal/auth/store/drivers/sqlite"
	"github.com/openmotive/authd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the issuance core together: store, scope registry,
// expiry policy and the managers. A surrounding request layer embeds this
// and calls the exported services; the application itself only owns the
// store lifecycle and housekeeping.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	scopes *scope.Registry

	Clients *service.ClientService
	Grants  *service.GrantService
	Tokens  *service.TokenService
	Refresh *service.RefreshService

	housekeeping *service.HousekeepingService
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		scopes: scope.DefaultRegistry(),
		logger: slogx.New(slogx.Config{
			Service: "authd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	return app, nil
}

// Run starts housekeeping and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("authd starting", "version", BuildVersion, "database", app.cfg.DatabaseFile)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	app.logger.Info("shutdown signal received", "signal", sig)

	return app.Shutdown()
}

// Shutdown stops housekeeping and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authd...")

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authd stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initServices initializes the issuance managers.
func (app *Application) initServices() {
	pol := policy.Expiry{
		CodeLifetime:         app.cfg.CodeLifetime,
		ConfidentialLifetime: app.cfg.AccessTokenLifetime,
		PublicLifetime:       app.cfg.PublicTokenLifetime,
	}
	clock := policy.UTCClock{}

	app.Clients = &service.ClientService{Store: app.db, Scopes: app.scopes, Clock: clock}
	app.Grants = &service.GrantService{Store: app.db, Policy: pol, Clock: clock}
	app.Tokens = &service.TokenService{Store: app.db, Policy: pol, Clock: clock}
	app.Refresh = &service.RefreshService{Store: app.db, Policy: pol, Clock: clock}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.RetentionPeriod,
	)
}
