package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/auth"
	"github.com/fsnd/coffee-shop/config"
	"github.com/fsnd/coffee-shop/handlers"
	"github.com/fsnd/coffee-shop/keyset"
	"github.com/fsnd/coffee-shop/middleware"
	"github.com/fsnd/coffee-shop/repositories"
	"github.com/fsnd/coffee-shop/repositories/sqldb"
	"github.com/fsnd/coffee-shop/services"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *sqldb.DB
	Logger *zap.Logger

	RepoFactory *sqldb.RepositoryFactory

	// Repositories
	Drinks    repositories.DrinkRepository
	TxManager repositories.TransactionManager

	// Auth. Keys is nil when no signing-key source is configured.
	Keys           *keyset.Keyset
	Verifier       auth.TokenVerifier
	AuthMiddleware *middleware.AuthMiddleware

	// Services and handlers
	DrinkService  *services.DrinkService
	DrinkHandler  *handlers.DrinkHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies.
// Signing keys are not fetched here; call LoadSigningKeys before serving.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initAuth(cfg); err != nil {
		_ = deps.RepoFactory.Close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.initServices()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase opens the pool and checks connectivity
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := sqldb.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	if err := factory.GetDB().PingContext(ctx); err != nil {
		_ = factory.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Drinks = repos.Drinks
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	if !cfg.Auth.Configured() {
		if cfg.IsProduction() {
			return errors.New("no signing key source configured")
		}
		d.Logger.Warn("auth not configured, protected routes will reject every request")
		d.Verifier = rejectAllVerifier{}
		d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)
		return nil
	}

	if cfg.Auth.Issuer == "" || cfg.Auth.Audience == "" {
		return errors.New("auth issuer and audience are required with a signing key source")
	}

	source := NewKeySource(cfg.Auth)
	d.Keys = keyset.New(source, d.Logger.Named("keyset"), keyset.Config{
		MinRefreshInterval: cfg.Auth.MinRefreshInterval,
		RefreshTimeout:     cfg.Auth.HTTPTimeout,
	})

	d.Verifier = auth.NewVerifier(d.Keys, auth.VerifierConfig{
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		Leeway:   cfg.Auth.Leeway,
	})
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)

	d.Logger.Info("token verification configured",
		zap.String("key_source", source.String()),
		zap.String("issuer", cfg.Auth.Issuer),
		zap.String("audience", cfg.Auth.Audience))
	return nil
}

func (d *Dependencies) initServices() {
	d.DrinkService = services.NewDrinkService(d.Drinks, d.TxManager, d.Logger)
	d.DrinkHandler = handlers.NewDrinkHandler(d.DrinkService, d.Logger)

	// Avoid handing a typed nil to the KeyStatus interface
	var keys handlers.KeyStatus
	if d.Keys != nil {
		keys = d.Keys
	}
	d.HealthHandler = handlers.NewHealthHandler(d.DB.DB, keys, d.Logger)
}

// LoadSigningKeys fetches the trusted key set. It is a no-op when auth is not configured.
func (d *Dependencies) LoadSigningKeys(ctx context.Context) error {
	if d.Keys == nil {
		return nil
	}
	if err := d.Keys.Load(ctx); err != nil {
		return fmt.Errorf("failed to load signing keys: %w", err)
	}
	return nil
}

// NewKeySource picks the key source: a static file, then a JWKS URL, then OIDC discovery
// on the issuer.
func NewKeySource(cfg config.AuthConfig) keyset.Source {
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	switch {
	case cfg.JWKSFile != "":
		return keyset.FileSource{Path: cfg.JWKSFile}
	case cfg.JWKSURL != "":
		return keyset.URLSource{URL: cfg.JWKSURL, Client: client}
	default:
		return keyset.DiscoverySource{Issuer: cfg.Issuer, Client: client}
	}
}

// rejectAllVerifier rejects all tokens (used when no signing keys are configured)
type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(context.Context, string) (*auth.Claims, error) {
	return nil, auth.ErrUnknownSigningKey
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
