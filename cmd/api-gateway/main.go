package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/coursegrid/solver-api/api/swagger"
	internalhandler "github.com/coursegrid/solver-api/internal/handler"
	internalmiddleware "github.com/coursegrid/solver-api/internal/middleware"
	"github.com/coursegrid/solver-api/internal/repository"
	"github.com/coursegrid/solver-api/internal/service"
	"github.com/coursegrid/solver-api/internal/solver"
	"github.com/coursegrid/solver-api/pkg/cache"
	"github.com/coursegrid/solver-api/pkg/config"
	"github.com/coursegrid/solver-api/pkg/database"
	"github.com/coursegrid/solver-api/pkg/jobs"
	"github.com/coursegrid/solver-api/pkg/logger"
	corsmiddleware "github.com/coursegrid/solver-api/pkg/middleware/cors"
	reqidmiddleware "github.com/coursegrid/solver-api/pkg/middleware/requestid"
	"github.com/coursegrid/solver-api/pkg/storage"
)

// @title Coursegrid Solver API
// @version 1.0.0
// @description Constraint-based weekly timetable solver with persisted runs and CSV/PDF export.
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	validate := validator.New()

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.Auth.Issuer,
		ClientID:          cfg.Auth.ClientID,
		ClientKeyHash:     cfg.Auth.ClientKeyHash,
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	api.Group("/auth").POST("/login", authHandler.Login)

	var cacheCloser interface{ Close() error }
	var cacheRepo service.CacheRepository
	if cfg.Solver.CacheEnabled {
		if client, err := cache.NewRedis(cfg.Redis); err != nil {
			logr.Sugar().Warnw("solve cache disabled, redis unreachable", "error", err)
		} else {
			cacheCloser = client
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	if cacheCloser != nil {
		defer cacheCloser.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Solver.CacheTTL, logr, cacheRepo != nil)

	runRepo := repository.NewSolveRunRepository(db)
	assignmentRepo := repository.NewSolveRunAssignmentRepository(db)

	generatorSvc := service.NewScheduleGeneratorService(
		runRepo,
		assignmentRepo,
		db,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.ScheduleGeneratorConfig{
			Driver: solver.DriverConfig{
				TimeLimitSeconds: cfg.Solver.TimeLimitSeconds,
				Workers:          cfg.Solver.Workers,
			},
			CacheTTL: cfg.Solver.CacheTTL,
		},
	)
	generatorHandler := internalhandler.NewScheduleGeneratorHandler(generatorSvc)

	fileStore, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
	exportSvc := service.NewExportService(assignmentRepo, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Export.SignedURLTTL,
	}, logr, nil, nil)

	exportWorkers := cfg.Export.WorkerConcurrency
	if exportWorkers <= 0 {
		exportWorkers = 1
	}
	exportDispatcher := service.NewExportDispatcher(exportSvc, jobs.QueueConfig{
		Workers:    exportWorkers,
		BufferSize: exportWorkers * 4,
		MaxRetries: cfg.Export.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queueCtx, cancelQueue := context.WithCancel(context.Background())
	exportDispatcher.Start(queueCtx)
	defer func() {
		cancelQueue()
		exportDispatcher.Stop()
	}()
	go runExportCleanup(queueCtx, exportSvc, cfg.Export.SignedURLTTL, logr)

	exportHandler := internalhandler.NewExportHandler(exportDispatcher, exportSvc)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	timetables := secured.Group("/timetables")
	timetables.Use(internalmiddleware.WithResponseMeta())
	timetables.POST("/generate", generatorHandler.Generate)
	timetables.GET("", generatorHandler.List)
	timetables.GET("/:id", generatorHandler.Get)
	timetables.DELETE("/:id", generatorHandler.Delete)
	timetables.GET("/:id/export", exportHandler.Generate)

	secured.GET("/export/:token", exportHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// runExportCleanup periodically removes export files past their TTL so the
// local storage directory doesn't grow unbounded.
func runExportCleanup(ctx context.Context, exportSvc *service.ExportService, ttl time.Duration, logr *zap.Logger) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := exportSvc.Cleanup(ttl)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("export cleanup removed stale files", "count", len(deleted))
			}
		}
	}
}
