// Package app is the central wiring point for dependency injection: it builds
// the provider catalog, the orchestrator core, the optional audit trail, and
// the auth middleware from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/modelmux/modelmux/auth"
	"github.com/modelmux/modelmux/config"
	"github.com/modelmux/modelmux/middleware"
	"github.com/modelmux/modelmux/repositories/postgres"
	"github.com/modelmux/modelmux/services/audit"
	"github.com/modelmux/modelmux/services/dispatch"
	"github.com/modelmux/modelmux/services/orchestrator"
	"github.com/modelmux/modelmux/services/providers"
	"github.com/modelmux/modelmux/services/providers/local"
	"github.com/modelmux/modelmux/services/providers/openai"
	"github.com/modelmux/modelmux/services/ratelimit"
	"github.com/modelmux/modelmux/services/selector"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB // nil when auditing is disabled

	// Core
	Catalog      *config.Catalog
	Registry     *providers.Registry
	Limiter      *ratelimit.Limiter
	Orchestrator *orchestrator.Service

	// Audit trail
	Audit *audit.Service

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initCore(); err != nil {
		return nil, fmt.Errorf("failed to initialize orchestrator: %w", err)
	}

	if err := deps.initAudit(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize audit trail: %w", err)
	}

	deps.initAuth()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initCore builds the catalog, registry, limiter, selector, invokers, and
// the orchestrator facade on top of them
func (d *Dependencies) initCore() error {
	catalog, err := config.LoadCatalog(d.Config.CatalogPath)
	if err != nil {
		return err
	}
	d.Catalog = catalog

	creds := config.NewEnvCredentialSource(catalog)
	registry, err := providers.NewRegistry(catalog.Descriptors(), creds, d.Logger)
	if err != nil {
		return err
	}
	d.Registry = registry

	if registry.EnabledCount() == 0 {
		d.Logger.Warn("no providers enabled, generate requests will fail",
			zap.Int("catalog_size", registry.Count()))
	}

	d.Limiter = ratelimit.NewLimiter(catalog.Limits(), d.Logger)
	sel := selector.New(registry, d.Limiter, d.Logger)

	mux := providers.NewInvokerMux()
	chatAdapter := openai.NewAdapter(openai.Config{}, catalog.KeyFor, d.Logger)
	mux.Register("http", chatAdapter)
	mux.Register("https", chatAdapter)
	mux.Register("local", local.NewEcho(d.Logger))

	dispatcher := dispatch.NewDispatcher(sel, mux, d.Logger)
	d.Orchestrator = orchestrator.NewService(registry, d.Limiter, dispatcher, d.Logger)

	d.Logger.Info("orchestrator initialized",
		zap.Int("catalog_size", registry.Count()),
		zap.Int("enabled_count", registry.EnabledCount()))
	return nil
}

// initAudit connects the audit database and starts the async writer. When no
// audit database is configured the service runs disabled.
func (d *Dependencies) initAudit(ctx context.Context) error {
	if d.Config.AuditDatabase == nil {
		d.Logger.Info("audit database not configured, auditing disabled")
		d.Audit = audit.NewService(nil, d.Logger, audit.DefaultConfig())
		return nil
	}

	db, err := postgres.NewDB(*d.Config.AuditDatabase, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	repo := postgres.NewDispatchLogRepository(db, d.Logger)
	d.Audit = audit.NewService(repo, d.Logger, audit.DefaultConfig())
	return d.Audit.Start()
}

// initAuth wires the JWT validator. An empty secret leaves a validator that
// rejects every token, so protected routes stay closed.
func (d *Dependencies) initAuth() {
	if d.Config.Auth.Secret == "" {
		d.Logger.Warn("JWT secret not configured, authenticated routes will reject all requests")
	}
	validator := auth.NewHMACValidator(d.Config.Auth.Secret, d.Config.Auth.Issuer)
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Audit.Enabled() {
		if err := d.Audit.Stop(5 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
