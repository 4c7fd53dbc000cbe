package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoops-server/internal/batch"
	"hoops-server/internal/campaign"
	"hoops-server/internal/engine"
	"hoops-server/internal/livegame"
	"hoops-server/internal/middleware"
	"hoops-server/internal/player"
	"hoops-server/internal/schedule"
	"hoops-server/internal/season"
	"hoops-server/internal/server"
	"hoops-server/internal/shared/config"
	"hoops-server/internal/shared/database"
	"hoops-server/internal/shared/logger"
	"hoops-server/internal/shared/redis"
	"hoops-server/internal/team"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	logger.Init()
	log := slog.With("component", "main")

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cfg := config.GlobalConfig

	teamRepo := team.NewRepository(db.DB, slog.Default())
	playerRepo := player.NewRepository(db.DB, slog.Default())
	scheduleRepo := schedule.NewRepository(db.DB, slog.Default())
	standingsRepo := season.NewStandingsRepository(db.DB, slog.Default())
	statsRepo := season.NewStatsRepository(db.DB, slog.Default())
	campaignRepo := campaign.NewRepository(db.DB, slog.Default())

	teamService := team.NewService(teamRepo, playerRepo, slog.Default())
	boxScoreCache := season.NewRedisBoxScoreCache(redisClient)

	aggregator := season.NewAggregator(
		scheduleRepo,
		standingsRepo,
		statsRepo,
		playerRepo,
		teamService,
		slog.Default(),
	).WithBoxScoreCache(boxScoreCache)

	simEngine := engine.NewEngine(engine.Config{
		PossessionsPerGame: cfg.Simulation.PossessionsPerGame,
		QuarterMinutes:     cfg.Simulation.QuarterMinutes,
	}, slog.Default())

	liveGameService := livegame.NewService(simEngine, scheduleRepo, teamService, aggregator, slog.Default())

	runner := batch.NewRunner(simEngine, teamService, slog.Default())
	progressMirror := batch.NewRedisProgressMirror(redisClient, slog.Default())
	orchestrator := batch.NewOrchestrator(
		runner,
		aggregator,
		campaignRepo,
		cfg.Simulation.BatchWorkers,
		slog.Default(),
	).WithProgressSink(progressMirror)

	advancer := campaign.NewAdvancer(scheduleRepo, campaignRepo, slog.Default())
	campaignService := campaign.NewService(advancer, campaignRepo, orchestrator, campaignRepo, playerRepo, slog.Default())

	routes := server.NewRoutes(
		db,
		teamService,
		playerRepo,
		scheduleRepo,
		standingsRepo,
		statsRepo,
		boxScoreCache,
		liveGameService,
		orchestrator,
		progressMirror,
		campaignService,
		slog.Default(),
	)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
	})
	cors := middleware.NewCORS()

	handler := cors.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server starting",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"batch_workers", cfg.Simulation.BatchWorkers)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
