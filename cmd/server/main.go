package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/renohq/quote-engine/internal/config"
	"github.com/renohq/quote-engine/internal/database"
	"github.com/renohq/quote-engine/internal/handler"
	"github.com/renohq/quote-engine/internal/middleware"
	"github.com/renohq/quote-engine/internal/queue"
	"github.com/renohq/quote-engine/internal/repository"
	"github.com/renohq/quote-engine/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter. Both degrade to
	// no-ops when the client is nil, so a missing Redis never blocks boot.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	h := handler.NewEstimateHandler(
		repository.NewQuoteRepo(db),
		repository.NewSpaceRepo(db),
		repository.NewOpeningRepo(db),
		repository.NewDeliverableRepo(db),
		repository.NewSummaryRepo(db),
		middleware.NewQuoteCache(cacheCfg, rdb),
	)

	e := echo.New()
	router.RegisterRoutes(e, h, cfg.JWTSecret, rdb, rlCfg)

	// Background consumer logs recomputed summaries to logs/estimate.log.
	go func() {
		if err := queue.StartEstimateConsumer(); err != nil {
			log.Printf("estimate-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
