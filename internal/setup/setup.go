package setup

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/trendly/backend/config"
	"github.com/trendly/backend/internal/domain"
	"github.com/trendly/backend/internal/infrastructure/cache"
	"github.com/trendly/backend/internal/infrastructure/catalog"
	"github.com/trendly/backend/internal/infrastructure/retailer"
	"github.com/trendly/backend/internal/infrastructure/vision"
	"github.com/trendly/backend/internal/logging"
	"github.com/trendly/backend/internal/usecase"
)

// App bundles the dependencies shared by the server and the CLI.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Service *usecase.AnalysisService
	closers []io.Closer
}

// InitializeApp loads configuration and builds every component in
// dependency order. Callers must call Cleanup when done.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{Config: cfg, Logger: logger}

	service, err := app.buildService(ctx)
	if err != nil {
		app.Cleanup()
		return nil, err
	}
	app.Service = service

	return app, nil
}

func (a *App) buildService(ctx context.Context) (*usecase.AnalysisService, error) {
	cfg := a.Config

	analysisCache, err := a.newCache(ctx)
	if err != nil {
		return nil, err
	}

	productCatalog, err := a.newCatalog(ctx)
	if err != nil {
		return nil, err
	}

	generator, err := a.newGenerator(ctx)
	if err != nil {
		return nil, err
	}

	// A nil retailer makes the external matcher use its simulated list
	var retailerClient domain.RetailerClient
	if cfg.Retailer.BaseURL != "" {
		retailerClient = retailer.NewClient(cfg.Retailer.APIKey, cfg.Retailer.BaseURL, a.Logger)
		a.Logger.Info("External retailer configured", zap.String("base_url", cfg.Retailer.BaseURL))
	} else {
		a.Logger.Info("External retailer not configured, using simulated products")
	}

	return usecase.NewAnalysisService(
		usecase.NewVisionAnalyzer(generator, a.Logger),
		usecase.NewInternalMatcher(productCatalog, cfg.Matching.InternalThreshold),
		usecase.NewExternalMatcher(retailerClient, cfg.Matching.ExternalThreshold),
		analysisCache,
		usecase.AnalysisServiceConfig{
			CacheTTL:   cfg.Cache.TTL,
			MaxResults: cfg.Matching.MaxResults,
		},
		a.Logger,
	), nil
}

func (a *App) newCache(ctx context.Context) (domain.CacheRepository, error) {
	switch a.Config.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, a.Config.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisCache)
		a.Logger.Info("Using redis cache", zap.Duration("ttl", a.Config.Cache.TTL))
		return redisCache, nil
	default:
		memoryCache := cache.NewMemoryCache(cache.DefaultCleanupInterval)
		a.closers = append(a.closers, memoryCache)
		a.Logger.Info("Using memory cache", zap.Duration("ttl", a.Config.Cache.TTL))
		return memoryCache, nil
	}
}

func (a *App) newCatalog(ctx context.Context) (domain.CatalogRepository, error) {
	switch a.Config.Catalog.Driver {
	case "sqlite":
		store, err := catalog.NewSQLiteCatalog(ctx, a.Config.Catalog.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		a.closers = append(a.closers, store)

		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate catalog: %w", err)
		}
		a.Logger.Info("Using sqlite catalog", zap.String("dsn", a.Config.Catalog.DSN))
		return store, nil
	default:
		a.Logger.Info("Using static catalog")
		return catalog.NewStaticCatalog(nil), nil
	}
}

func (a *App) newGenerator(ctx context.Context) (domain.VisionGenerator, error) {
	cfg := a.Config.Vision
	limits := vision.Limits{
		Timeout:           cfg.Timeout,
		MaxConcurrent:     cfg.MaxConcurrent,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}

	switch cfg.Provider {
	case "openai":
		a.Logger.Info("Using OpenAI vision model", zap.String("model", cfg.Model))
		return vision.NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, limits), nil
	default:
		gemini, err := vision.NewGemini(ctx, cfg.APIKey, cfg.Model, limits)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		a.closers = append(a.closers, gemini)
		a.Logger.Info("Using Gemini vision model", zap.String("model", cfg.Model))
		return gemini, nil
	}
}

// Cleanup releases resources in reverse initialization order.
func (a *App) Cleanup() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Logger.Error("Failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil

	_ = a.Logger.Sync()
}
