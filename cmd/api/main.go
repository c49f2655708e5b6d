package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/exam-proctor-api/internal/handler"
	"github.com/noah-isme/exam-proctor-api/internal/middleware"
	"github.com/noah-isme/exam-proctor-api/internal/repository"
	"github.com/noah-isme/exam-proctor-api/internal/service"
	"github.com/noah-isme/exam-proctor-api/pkg/cache"
	"github.com/noah-isme/exam-proctor-api/pkg/config"
	"github.com/noah-isme/exam-proctor-api/pkg/database"
	"github.com/noah-isme/exam-proctor-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-proctor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-proctor-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, solve status served from database only", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	staffRepo := repository.NewStaffRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	wishRepo := repository.NewWishRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	rosterSvc := service.NewRosterService(staffRepo, gradeRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(sessionRepo, slotRepo, wishRepo, staffRepo, validate, logr)
	optimizeSvc := service.NewOptimizeService(
		staffRepo, gradeRepo, slotRepo, wishRepo,
		sessionRepo, assignmentRepo, ledgerRepo, cacheRepo, metricsSvc,
		validate, logr, cfg.Solver,
	)
	exportSvc := service.NewExportService(assignmentRepo, ledgerRepo, staffRepo, sessionRepo, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	optimizeSvc.Start(ctx)
	defer optimizeSvc.Stop()

	rosterHandler := handler.NewRosterHandler(rosterSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	solveHandler := handler.NewSolveHandler(optimizeSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/staff", rosterHandler.ListStaff)
		api.PUT("/staff", rosterHandler.UpsertStaff)
		api.GET("/staff/:id", rosterHandler.GetStaff)
		api.PUT("/staff/:id/participation", rosterHandler.SetParticipation)
		api.GET("/grades", rosterHandler.ListGrades)
		api.PUT("/grades", rosterHandler.UpsertGrade)
		api.PUT("/grades/:id/ceiling", rosterHandler.SetGradeCeiling)

		api.GET("/sessions", scheduleHandler.ListSessions)
		api.POST("/sessions", scheduleHandler.CreateSession)
		api.GET("/sessions/:id", scheduleHandler.GetSession)
		api.GET("/sessions/:id/schedule", scheduleHandler.ListSchedule)
		api.PUT("/sessions/:id/schedule", scheduleHandler.ReplaceSchedule)
		api.GET("/sessions/:id/wishes", scheduleHandler.ListWishes)
		api.PUT("/sessions/:id/wishes/:staffId", scheduleHandler.ReplaceWishes)

		api.POST("/sessions/:id/solve", solveHandler.Solve)
		api.GET("/sessions/:id/solve/status", solveHandler.Status)
		api.GET("/sessions/:id/solve/stats", solveHandler.Stats)
		api.GET("/sessions/:id/workload", solveHandler.Workload)
		api.DELETE("/sessions/:id/assignments", solveHandler.Clear)

		if cfg.Exports.Enabled {
			api.GET("/sessions/:id/exports/assignments.csv", exportHandler.AssignmentsCSV)
			api.GET("/sessions/:id/exports/assignments.pdf", exportHandler.AssignmentsPDF)
			api.GET("/sessions/:id/exports/ledger.csv", exportHandler.LedgerCSV)
			api.GET("/sessions/:id/exports/convocations.pdf", exportHandler.ConvocationsPDF)
			api.GET("/sessions/:id/exports/convocations/:staffId", exportHandler.ConvocationPDF)
		}

		api.GET("/system/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
