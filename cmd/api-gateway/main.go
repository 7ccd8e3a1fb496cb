package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/seletivo-api/api/swagger"
	"github.com/noah-isme/seletivo-api/internal/handler"
	"github.com/noah-isme/seletivo-api/internal/middleware"
	"github.com/noah-isme/seletivo-api/internal/models"
	"github.com/noah-isme/seletivo-api/internal/repository"
	"github.com/noah-isme/seletivo-api/internal/service"
	"github.com/noah-isme/seletivo-api/pkg/cache"
	"github.com/noah-isme/seletivo-api/pkg/config"
	"github.com/noah-isme/seletivo-api/pkg/database"
	"github.com/noah-isme/seletivo-api/pkg/jobs"
	"github.com/noah-isme/seletivo-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/seletivo-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/seletivo-api/pkg/middleware/requestid"
)

// @title Seletivo API
// @version 1.0.0
// @description Multi-site vacancy allocation and occupancy engine
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, occupancy snapshots uncached", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	campusRepo := repository.NewCampusRepository(db)
	editalRepo := repository.NewEditalRepository(db)
	poolRepo := repository.NewVacancyPoolRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	reportJobRepo := repository.NewReportJobRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	locks := service.NewPoolLocks()
	resolver := service.NewPoolResolver(poolRepo, logr)
	occupancySvc := service.NewOccupancyService(poolRepo, redisClient, cfg.Occupancy.CacheTTL, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	campusSvc := service.NewCampusService(campusRepo, poolRepo, validate, logr)
	editalSvc := service.NewEditalService(editalRepo, validate, logr)
	poolSvc := service.NewPoolService(poolRepo, locks, occupancySvc, validate, logr)
	candidateSvc := service.NewCandidateService(candidateRepo, logr)
	allocationSvc := service.NewAllocationService(candidateRepo, poolRepo, resolver, locks, metricsSvc, occupancySvc, cfg.Allocation.FemaleFloorRatio, logr)
	statusSvc := service.NewCandidateStatusService(candidateRepo, poolRepo, resolver, locks, metricsSvc, occupancySvc, logr)
	importSvc := service.NewImportService(candidateRepo, campusRepo, editalRepo, resolver, logr)

	reportWorker := service.NewReportWorker(reportJobRepo, candidateRepo, cfg.Reports.StorageDir, cfg.Reports.WorkerRetries, logr)
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportQueue.Start(context.Background())
	defer reportQueue.Stop()
	reportSvc := service.NewReportService(reportJobRepo, reportQueue, cfg.Reports.StorageDir, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	campusHandler := handler.NewCampusHandler(campusSvc)
	editalHandler := handler.NewEditalHandler(editalSvc)
	poolHandler := handler.NewPoolHandler(poolSvc, occupancySvc)
	candidateHandler := handler.NewCandidateHandler(candidateSvc, statusSvc)
	allocationHandler := handler.NewAllocationHandler(allocationSvc)
	importHandler := handler.NewImportHandler(importSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/campuses", campusHandler.List)
		authed.GET("/campuses/:id", campusHandler.Get)
		authed.GET("/campuses/:id/pools", campusHandler.Pools)

		authed.GET("/editais", editalHandler.List)
		authed.GET("/editais/:id", editalHandler.Get)

		authed.GET("/pools/:id", poolHandler.Get)
		authed.GET("/pools/:id/occupancy", poolHandler.Occupancy)

		authed.GET("/candidates", candidateHandler.List)
		authed.GET("/candidates/:id", candidateHandler.Get)
		authed.POST("/candidates/:id/classify", candidateHandler.Classify)
		authed.POST("/candidates/:id/qualify", candidateHandler.Qualify)
		authed.POST("/candidates/:id/reserve", candidateHandler.Reserve)
		authed.POST("/candidates/:id/eliminate", candidateHandler.Eliminate)
		authed.POST("/candidates/:id/revert", candidateHandler.Revert)

		authed.POST("/allocations/run", allocationHandler.Run)

		if cfg.Reports.Enabled {
			authed.POST("/reports", reportHandler.Create)
			authed.GET("/reports/:id", reportHandler.Status)
			authed.GET("/reports/:id/download", reportHandler.Download)
		}
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/campuses", campusHandler.Create)
		admin.POST("/editais", editalHandler.Create)
		admin.PUT("/pools/:id/quotas", poolHandler.UpdateQuotas)
		if cfg.Imports.Enabled {
			admin.POST("/imports/candidates", importHandler.ImportCandidates)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
