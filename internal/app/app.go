// Package app assembles the portal from its configuration.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"jobboard-portal/internal/api"
	"jobboard-portal/internal/auth"
	"jobboard-portal/internal/common/config"
	"jobboard-portal/internal/common/database"
	gateway "jobboard-portal/internal/common/http"
	"jobboard-portal/internal/common/logger"
	"jobboard-portal/internal/common/observability"
	"jobboard-portal/internal/common/validation"
	"jobboard-portal/internal/session"
	"jobboard-portal/internal/web"
	"jobboard-portal/pkg/registry"
)

// App is a fully wired portal. Run starts its background work and Close releases
// its connections.
type App struct {
	Router *gin.Engine
	Redis  *database.RedisClient
	Stores *session.Registry
	Obs    *observability.Observability

	cfg    *config.Config
	logger logger.Logger
}

func New(cfg *config.Config, log logger.Logger) (*App, error) {
	views, err := registry.LoadRegistry(cfg.Views.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load view registry: %w", err)
	}
	validator, err := validation.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("load payload schemas: %w", err)
	}

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.TraceSampleRate, log)
	rdb := database.NewRedis(cfg.Redis)

	client := api.NewClient(gateway.NewClient(gateway.Config{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           config.GetDuration(cfg.Backend.Timeout),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
	}, log))

	strict := cfg.Session.Strict()
	stores := session.NewRegistry(func() *session.Store {
		return session.NewStore(client, session.Options{
			Strict:        strict,
			Validator:     validator,
			Observability: obs,
			Logger:        log,
		})
	}, config.GetDuration(cfg.Session.StoreIdleTTL), log)

	tokens := auth.NewTokenStore(rdb.Client, cfg.Session.KeyPrefix, config.GetDuration(cfg.Session.TTL))

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := web.NewRouter(web.Deps{
		Stores:  stores,
		Tokens:  tokens,
		Auth:    auth.NewService(client.Auth, tokens, stores, log),
		Guard:   auth.NewGuard(views),
		Views:   views,
		Cookie:  auth.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		Service: cfg.App.Name,
		Ready:   rdb.Ping,
		Logger:  log,
	})
	if err != nil {
		_ = rdb.Close()
		obs.Shutdown()
		return nil, fmt.Errorf("build router: %w", err)
	}

	return &App{
		Router: router,
		Redis:  rdb,
		Stores: stores,
		Obs:    obs,
		cfg:    cfg,
		logger: log,
	}, nil
}

// Run sweeps idle session stores until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.Stores.Run(ctx, config.GetDuration(a.cfg.Session.SweepEvery))
}

func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.logger.Warn("redis close failed", map[string]interface{}{"error": err.Error()})
	}
	a.Obs.Shutdown()
}
