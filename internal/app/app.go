package app

import (
	"crestfund-core/internal/bus"
	"crestfund-core/internal/cache"
	"crestfund-core/internal/config"
	"crestfund-core/internal/fetch"
	"crestfund-core/internal/health"
	"crestfund-core/internal/infrastructure/database"
	"crestfund-core/internal/interfaces/handlers/collections"
	"crestfund-core/internal/interfaces/handlers/consistencyreport"
	"crestfund-core/internal/interfaces/handlers/dashboard"
	"crestfund-core/internal/interfaces/handlers/holdings"
	"crestfund-core/internal/interfaces/handlers/investments"
	"crestfund-core/internal/middleware"
	"crestfund-core/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the wired collaborators the app runs on, returned so the caller
// can ping connections and manage poller lifecycle.
type Deps struct {
	DB    *gorm.DB
	Rdb   *redis.Client
	Store *store.Store
	Bus   *bus.Bus
	Cache *cache.Service
}

// CreateApp builds the Fiber app with all global middleware and route
// registration, and wires the cache core against its collaborators.
func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	// Redis is optional: without it the bus degrades to in-process delivery
	// and request stats are skipped.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rdb = redis.NewClient(opt)
	} else {
		log.Warn().Msg("REDIS_URL not set; cross-process event delivery disabled")
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, errDB
		}
	}

	st := store.New()
	b := bus.New(rdb, cfg.EventChannel)
	var svc *cache.Service
	if db != nil {
		svc = cache.New(st, &fetch.Repository{DB: db}, b, cfg.CacheMaxAge, cfg.DebounceWindow)
		svc.WireBus()
	}

	app.Use(middleware.RequestMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// --- Routes (no scope required) ---
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		Store:          st,
		CacheMaxAge:    cfg.CacheMaxAge,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			healthHandlers.DB = sqlDB
		}
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	// --- Scoped modules ---
	if svc != nil {
		dashHandlers := &dashboard.Handlers{Cache: svc}
		dashGroup := app.Group("/api/v1/dashboard", middleware.RoleScope())
		dashGroup.Get("/metrics", dashHandlers.Metrics)
		dashGroup.Get("/trend", dashHandlers.Trend)
		dashGroup.Get("/status-distribution", dashHandlers.StatusDistribution)
		dashGroup.Get("/portfolio-distribution", dashHandlers.PortfolioDistribution)
		dashGroup.Get("/investments/:id/roi", dashHandlers.InvestmentROI)
		dashGroup.Get("/company-overview", dashHandlers.CompanyOverview)

		consHandlers := &consistencyreport.Handlers{Cache: svc}
		consGroup := app.Group("/api/v1/consistency", middleware.RoleScope())
		consGroup.Get("/report", consHandlers.Report)
		consGroup.Post("/reconcile", consHandlers.Reconcile)

		colHandlers := &collections.Handlers{Cache: svc}
		colGroup := app.Group("/api/v1/collections", middleware.RoleScope())
		colGroup.Post("/refresh", colHandlers.Refresh)
		colGroup.Get("/state", colHandlers.State)

		invHandlers := &investments.Handlers{Cache: svc}
		invGroup := app.Group("/api/v1/investments", middleware.RoleScope())
		invGroup.Post("/", invHandlers.Create)
		invGroup.Put("/:id", invHandlers.Update)
		invGroup.Delete("/:id", invHandlers.Delete)

		holdHandlers := &holdings.Handlers{Cache: svc}
		holdGroup := app.Group("/api/v1/holdings", middleware.RoleScope())
		holdGroup.Post("/", holdHandlers.Create)
		holdGroup.Delete("/:id", holdHandlers.Delete)
	}

	return app, &Deps{DB: db, Rdb: rdb, Store: st, Bus: b, Cache: svc}, nil
}
