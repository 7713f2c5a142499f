package server

import (
	"context"
	"fmt"

	auctions "auction-escrow/internal/auctionService"
	"auction-escrow/internal/config"
	"auction-escrow/internal/events"
	"auction-escrow/internal/journal"
	"auction-escrow/internal/registry"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the wired application: router, service and the connections it owns
type App struct {
	Router  *gin.Engine
	Service *auctions.AuctionService
	DB      *gorm.DB      // nil when the journal is disabled
	Redis   *redis.Client // nil when running without Redis
}

// CreateApp connects the configured backends and builds the router
func CreateApp(ctx context.Context, cfg *config.Config, opts ...auctions.Option) (*App, error) {
	app := &App{}
	var svcOpts []auctions.Option

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("app: parse REDIS_URL: %w", err)
		}
		app.Redis = redis.NewClient(opt)
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			_ = app.Redis.Close()
			return nil, fmt.Errorf("app: redis connection failed: %w", err)
		}
		feed := events.NewRedisNotifier(app.Redis, cfg.EventsChannel)
		svcOpts = append(svcOpts,
			auctions.WithAuctionHouse(registry.NewRedis(app.Redis, "")),
			auctions.WithNotifier(events.Fanout{events.LogNotifier{}, feed}),
			auctions.WithEventHistory(feed),
		)
		utils.Info("Redis connected", map[string]any{"events_channel": cfg.EventsChannel})
	}

	if cfg.DatabaseURL != "" {
		db, err := journal.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("app: open journal database: %w", err)
		}
		app.DB = db
		if err := journal.AutoMigrate(db); err != nil {
			app.Close()
			return nil, fmt.Errorf("app: migrate journal: %w", err)
		}
		svcOpts = append(svcOpts, auctions.WithJournal(journal.NewStore(db)))
		utils.Info("Journal database connected", map[string]any{"driver": cfg.DatabaseDriver})
	}

	app.Service = auctions.NewAuctionService(repository.NewMemoryRepo(), append(svcOpts, opts...)...)
	app.Router = SetupRouter(app.Service, RouterOptions{
		JWTSecret:     []byte(cfg.JWTSecret),
		FaucetEnabled: cfg.FaucetEnabled,
	})
	return app, nil
}

// Close releases the connections the app opened
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
