package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/adapters/cache"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/adapters/handler"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/adapters/repository/sqlite"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/config"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/services"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
	"github.com/redis/go-redis/v9"
)

// App wires config, storage, the analytics cache, services and the router.
type App struct {
	Cfg       *config.Config
	Repo      *sqlite.SQLiteRepository
	Redis     *redis.Client        // nil when the memory cache is used
	Cache     ports.AnalyticsCache // nil when ANALYTICS_CACHE_TTL is not positive
	Links     *services.LinkService
	Clicks    *services.ClickService
	Analytics *services.AnalyticsService
	Scheduler *services.SchedulerService
	Users     *services.UserService
	Router    http.Handler
}

// New builds a fully wired application.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{Cfg: cfg, Repo: repo}

	var analyticsCache ports.AnalyticsCache
	switch {
	case cfg.AnalyticsCacheTTL <= 0:
		logger.Info().Dur("ttl", cfg.AnalyticsCacheTTL).Msg("analytics cache disabled")
	case cfg.RedisAddr != "":
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			// Analytics stay correct without a cache, only slower.
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-memory analytics cache")
			analyticsCache = cache.NewMemoryCache(cfg.AnalyticsCacheTTL)
		} else {
			a.Redis = client
			analyticsCache = cache.NewRedisCache(client, cfg.AnalyticsCacheTTL)
		}
	default:
		analyticsCache = cache.NewMemoryCache(cfg.AnalyticsCacheTTL)
	}
	a.Cache = analyticsCache

	a.Links = services.NewLinkService(repo, repo, analyticsCache)
	a.Clicks = services.NewClickService(repo, repo, analyticsCache, cfg.IPHashSalt)
	a.Analytics = services.NewAnalyticsService(repo, repo, analyticsCache)
	a.Scheduler = services.NewSchedulerService(repo)
	a.Users = services.NewUserService(repo)

	a.Router = handler.NewRouter(cfg, handler.Services{
		Links:     a.Links,
		Clicks:    a.Clicks,
		Analytics: a.Analytics,
		Scheduler: a.Scheduler,
		Users:     a.Users,
		Health:    a.health,
	})
	return a, nil
}

func (a *App) health(ctx context.Context) error {
	if err := a.Repo.Ping(ctx); err != nil {
		return err
	}
	if a.Redis != nil {
		return a.Redis.Ping(ctx).Err()
	}
	return nil
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	return a.Repo.Close()
}
