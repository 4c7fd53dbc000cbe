package server

import (
	"log/slog"
	"net/http"

	"hoops-server/internal/batch"
	batchHandlers "hoops-server/internal/batch/handlers"
	"hoops-server/internal/campaign"
	campaignHandlers "hoops-server/internal/campaign/handlers"
	"hoops-server/internal/livegame"
	livegameHandlers "hoops-server/internal/livegame/handlers"
	"hoops-server/internal/middleware"
	"hoops-server/internal/player"
	"hoops-server/internal/schedule"
	scheduleHandlers "hoops-server/internal/schedule/handlers"
	"hoops-server/internal/season"
	seasonHandlers "hoops-server/internal/season/handlers"
	serverHandlers "hoops-server/internal/server/handlers"
	"hoops-server/internal/shared/database"
	"hoops-server/internal/team"
	teamHandlers "hoops-server/internal/team/handlers"
)

type Routes struct {
	db              *database.DB
	teamService     *team.Service
	playerRepo      *player.Repository
	scheduleRepo    *schedule.Repository
	standingsRepo   *season.StandingsRepository
	statsRepo       *season.StatsRepository
	boxScoreCache   *season.RedisBoxScoreCache
	liveGameService *livegame.Service
	orchestrator    *batch.Orchestrator
	progressMirror  *batch.RedisProgressMirror
	campaignService *campaign.Service
	logger          *slog.Logger
}

func NewRoutes(
	db *database.DB,
	teamService *team.Service,
	playerRepo *player.Repository,
	scheduleRepo *schedule.Repository,
	standingsRepo *season.StandingsRepository,
	statsRepo *season.StatsRepository,
	boxScoreCache *season.RedisBoxScoreCache,
	liveGameService *livegame.Service,
	orchestrator *batch.Orchestrator,
	progressMirror *batch.RedisProgressMirror,
	campaignService *campaign.Service,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:              db,
		teamService:     teamService,
		playerRepo:      playerRepo,
		scheduleRepo:    scheduleRepo,
		standingsRepo:   standingsRepo,
		statsRepo:       statsRepo,
		boxScoreCache:   boxScoreCache,
		liveGameService: liveGameService,
		orchestrator:    orchestrator,
		progressMirror:  progressMirror,
		campaignService: campaignService,
		logger:          logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	teamHandler := teamHandlers.NewTeamHandler(r.teamService, r.playerRepo)
	scheduleHandler := scheduleHandlers.NewScheduleHandler(r.scheduleRepo, r.boxScoreCache)
	seasonHandler := seasonHandlers.NewSeasonHandler(r.standingsRepo, r.statsRepo)
	liveGameHandler := livegameHandlers.NewLiveGameHandler(r.liveGameService)
	batchHandler := batchHandlers.NewBatchHandler(r.orchestrator, r.progressMirror)
	campaignHandler := campaignHandlers.NewCampaignHandler(r.campaignService)

	// Public read surface
	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("/api/teams", teamHandler.GetAll)
	mux.HandleFunc("/api/teams/{id}", teamHandler.Get)
	mux.HandleFunc("/api/teams/{id}/roster", teamHandler.GetRoster)
	mux.HandleFunc("/api/teams/{id}/stats", seasonHandler.TeamStats)
	mux.HandleFunc("/api/schedule", scheduleHandler.GetGamesByDate)
	mux.HandleFunc("/api/games/{id}", scheduleHandler.GetGame)
	mux.HandleFunc("/api/games/{id}/boxscore", scheduleHandler.GetBoxScore)
	mux.HandleFunc("/api/standings", seasonHandler.Standings)
	mux.HandleFunc("/api/players/{id}/stats", seasonHandler.PlayerStats)

	// Simulation endpoints (authenticated)
	mux.Handle("/api/games/{id}/start", middleware.Session(http.HandlerFunc(liveGameHandler.Start)))
	mux.Handle("/api/games/{id}/continue", middleware.Session(http.HandlerFunc(liveGameHandler.Continue)))
	mux.Handle("/api/games/{id}/sim-to-end", middleware.Session(http.HandlerFunc(liveGameHandler.SimToEnd)))
	mux.Handle("/api/games/{id}/abandon", middleware.Session(http.HandlerFunc(liveGameHandler.Abandon)))
	mux.Handle("/api/campaign", middleware.Session(http.HandlerFunc(campaignHandler.Get)))
	mux.Handle("/api/campaign/simulate", middleware.Session(http.HandlerFunc(campaignHandler.Simulate)))
	mux.Handle("/api/batches/{id}", middleware.Session(http.HandlerFunc(batchHandler.Status)))
	mux.Handle("/api/batches/{id}/results", middleware.Session(http.HandlerFunc(batchHandler.Results)))
	mux.Handle("/api/batches/{id}/cancel", middleware.Session(http.HandlerFunc(batchHandler.Cancel)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{
			"/api/server/health", "/api/teams", "/api/schedule",
			"/api/games", "/api/standings", "/api/players/stats",
		},
		"protected_endpoints", []string{
			"/api/games/start", "/api/games/continue", "/api/games/sim-to-end",
			"/api/campaign", "/api/campaign/simulate", "/api/batches",
		},
	)

	return mux
}
