package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/clinic-adp-api/api/swagger"
	"github.com/noah-isme/clinic-adp-api/internal/authz"
	"github.com/noah-isme/clinic-adp-api/internal/handler"
	"github.com/noah-isme/clinic-adp-api/internal/middleware"
	"github.com/noah-isme/clinic-adp-api/internal/models"
	"github.com/noah-isme/clinic-adp-api/internal/repository"
	"github.com/noah-isme/clinic-adp-api/internal/service"
	"github.com/noah-isme/clinic-adp-api/pkg/cache"
	"github.com/noah-isme/clinic-adp-api/pkg/config"
	"github.com/noah-isme/clinic-adp-api/pkg/database"
	"github.com/noah-isme/clinic-adp-api/pkg/jobs"
	"github.com/noah-isme/clinic-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/clinic-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/clinic-adp-api/pkg/middleware/requestid"
	"github.com/noah-isme/clinic-adp-api/pkg/storage"
)

// @title Clinic ADP API
// @version 1.0.0
// @description Instance-scoped access control and safe staff deletion for the clinic admin panel
// @BasePath /
// @schemes http

const shutdownTimeout = 10 * time.Second

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	cacheSvc := service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
			defer redisClient.Close()
		}
	}

	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	exportRepo := repository.NewExportRepository(db)
	purgeRepo := repository.NewUserPurgeRepository(db, nil)

	engine := authz.NewEngine(assignmentRepo)

	auditSvc := service.NewAuditService(auditRepo, logr)
	authSvc := service.NewAuthService(userRepo, auditSvc, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	userSvc := service.NewUserService(userRepo, auditSvc, nil, logr)
	purgeSvc := service.NewUserPurgeService(purgeRepo, userRepo, engine, auditSvc, logr)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, nil, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, patientRepo, cacheSvc, auditSvc, nil, logr)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(auditRepo, exportStorage, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.ResultTTL,
	}, logr, nil, nil)

	exportWorker := service.NewAuditExportWorker(exportRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("audit-export", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	auditExportSvc := service.NewAuditExportService(exportRepo, exportQueue, exportSvc, auditSvc, logr, service.AuditExportConfig{
		ResultTTL:       cfg.Exports.ResultTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	auditExportSvc.RecoverPendingJobs(ctx)
	auditExportSvc.StartCleanup(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc, purgeSvc)
	patientHandler := handler.NewPatientHandler(patientSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	auditHandler := handler.NewAuditHandler(auditSvc, auditExportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	users := api.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("", middleware.Authorize(engine, metricsSvc, models.ObjectUserAdmin, models.PermRead, ""), userHandler.List)
		users.POST("", middleware.Authorize(engine, metricsSvc, models.ObjectUserAdmin, models.PermCreate, ""), userHandler.Create)
		users.GET("/:id", middleware.Authorize(engine, metricsSvc, models.ObjectUserAdmin, models.PermRead, ""), userHandler.Get)
		users.PUT("/:id", middleware.Authorize(engine, metricsSvc, models.ObjectUserAdmin, models.PermUpdate, ""), userHandler.Update)
		users.PATCH("/:id/deactivate", middleware.Authorize(engine, metricsSvc, models.ObjectUserAdmin, models.PermUpdate, ""), userHandler.Deactivate)
		// The purge service re-checks DELETE on USER_ADMIN itself; the
		// middleware check keeps the denial path uniform across routes.
		users.DELETE("/:id/permanent", middleware.Authorize(engine, metricsSvc, models.ObjectUserAdmin, models.PermDelete, ""), userHandler.Purge)
	}

	patients := api.Group("/patients", middleware.JWT(authSvc))
	{
		patients.GET("", middleware.Authorize(engine, metricsSvc, models.ObjectPatient, models.PermRead, ""), patientHandler.List)
		patients.POST("", middleware.Authorize(engine, metricsSvc, models.ObjectPatient, models.PermCreate, ""), patientHandler.Create)
		patients.GET("/:id", middleware.Authorize(engine, metricsSvc, models.ObjectPatient, models.PermRead, "id"), patientHandler.Get)
		patients.PUT("/:id", middleware.Authorize(engine, metricsSvc, models.ObjectPatient, models.PermUpdate, "id"), patientHandler.Update)
		patients.DELETE("/:id", middleware.Authorize(engine, metricsSvc, models.ObjectPatient, models.PermDelete, "id"), patientHandler.Delete)

		patients.GET("/:id/care-team", middleware.Authorize(engine, metricsSvc, models.ObjectPatient, models.PermRead, "id"), assignmentHandler.ListCareTeam)
		patients.GET("/:id/care-team/:roleSlot", middleware.Authorize(engine, metricsSvc, models.ObjectPatient, models.PermRead, "id"), assignmentHandler.GetSlot)
		// Supervisors (clinicians) and front desk fill slots alongside
		// admins; the service blocks non-admin self-assignment.
		patients.PUT("/:id/care-team/:roleSlot", middleware.RequireRoles(models.RoleAdmin, models.RoleClinician, models.RoleReceptionist), assignmentHandler.SetSlot)
	}

	audit := api.Group("/audit", middleware.JWT(authSvc))
	{
		audit.GET("", middleware.Authorize(engine, metricsSvc, models.ObjectAuditTrail, models.PermRead, ""), auditHandler.Timeline)
		audit.POST("/exports", middleware.Authorize(engine, metricsSvc, models.ObjectAuditTrail, models.PermRead, ""), auditHandler.CreateExport)
		audit.GET("/exports/:id", middleware.Authorize(engine, metricsSvc, models.ObjectAuditTrail, models.PermRead, ""), auditHandler.ExportStatus)
	}
	// Download is authenticated by the signed token embedded in the URL;
	// the request-level audit keeps a trail of who fetched which file.
	api.GET("/audit/exports/download/:token",
		middleware.Audit(auditSvc, models.AuditActionExportDownload, "audit_exports"),
		auditHandler.Download)

	system := api.Group("/system", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		system.GET("/metrics", metricsHandler.Snapshot)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}
}
