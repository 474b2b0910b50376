package main

import (
	"context"
	"fmt"

	"crestfund-core/internal/app"
	"crestfund-core/internal/bus"
	"crestfund-core/internal/config"
	"crestfund-core/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}

	fiberApp, deps, err := app.CreateApp(cfg)
	if err != nil {
		panic("app create: " + err.Error())
	}

	// Verify connections before printing startup logs
	if deps.DB != nil {
		sqlDB, err := deps.DB.DB()
		if err != nil {
			panic("Postgres: get DB: " + err.Error())
		}
		if err := sqlDB.Ping(); err != nil {
			panic("Postgres connection failed: " + err.Error())
		}
		fmt.Println("Postgres connected")
	}
	if deps.Rdb != nil {
		if err := deps.Rdb.Ping(context.Background()).Err(); err != nil {
			panic("Redis connection failed: " + err.Error())
		}
		fmt.Println("Redis connected")
	}

	// Polling fallback: one poller per active role keeps each view family
	// fresh even when no change events arrive.
	if deps.Cache != nil {
		for _, role := range []domain.Role{domain.RoleSuperadmin, domain.RoleAdmin, domain.RoleInvestor} {
			poller := bus.NewAutoRefresh(cfg.PollInterval, deps.Cache.RefreshForRole(role))
			poller.MaxFailures = cfg.PollMaxFailures
			poller.Start()
			defer poller.Stop()
		}
	}
	defer deps.Bus.Close()

	fmt.Printf("Server running at http://localhost:%s\n", cfg.Port)
	fmt.Printf("Health check: http://localhost:%s/health/json\n", cfg.Port)
	fmt.Println("---")

	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		panic(err)
	}
}
