package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	httpapi "github.com/aussiebroadwan/questboard/internal/questboard/http"
	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/internal/questboard/store"
	"github.com/aussiebroadwan/questboard/internal/questboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/questboard/pkg/cryptox"
	"github.com/aussiebroadwan/questboard/pkg/jwtx"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application wires questd together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.EdDSASigner
	keys     *jwtx.KeySet
	verifier *jwtx.EdDSAVerifier

	authService         *service.AuthService
	userService         *service.UserService
	organizationService *service.OrganizationService
	questService        *service.QuestService
	housekeeper         *service.Housekeeper

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "questd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, keys, verifier, err := InitSigningKey(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.signer, app.keys, app.verifier = signer, keys, verifier

	if app.cfg.Pepper == "" {
		app.logger.Warn("QUESTBOARD_PEPPER is not set, passwords are hashed without a pepper")
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run serves HTTP and runs housekeeping until ctx is cancelled, then shuts
// down gracefully.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		_ = app.db.Close()
		return fmt.Errorf("listen on %s: %w", app.server.Addr, err)
	}

	housekeepingCtx, stopHousekeeping := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	wg.Go(func() { app.housekeeper.Run(housekeepingCtx) })
	stop := func() {
		stopHousekeeping()
		wg.Wait()
	}

	app.logger.Info("questd listening",
		"addr", ln.Addr().String(),
		"version", BuildVersion,
		"legacy_errors", app.cfg.LegacyErrors,
	)

	served := make(chan error, 1)
	go func() { served <- app.server.Serve(ln) }()

	select {
	case err := <-served:
		stop()
		_ = app.db.Close()
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
		stop()
		return app.Shutdown()
	}
}

// Shutdown drains in-flight requests for up to ShutdownGracePeriod and
// closes the database.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	var errs []error
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Warn("requests still running at the end of the grace period", "error", err)
		errs = append(errs, app.server.Close())
	}

	errs = append(errs, app.db.Close())

	if err := errors.Join(errs...); err != nil {
		return err
	}
	app.logger.Info("questd stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Hasher:     cryptox.PasswordHasher{Pepper: app.cfg.Pepper},
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.organizationService = &service.OrganizationService{Store: app.db}
	app.questService = &service.QuestService{Store: app.db}

	app.housekeeper = &service.Housekeeper{
		Store:    app.db,
		Logger:   app.logger.With("component", "housekeeping"),
		Interval: app.cfg.HousekeepingInterval,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.LegacyErrors,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.OrganizationService = app.organizationService
	router.QuestService = app.questService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
