package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sma-engine/masterschedule/api/swagger"
	"github.com/sma-engine/masterschedule/internal/handler"
	"github.com/sma-engine/masterschedule/internal/middleware"
	"github.com/sma-engine/masterschedule/internal/models"
	"github.com/sma-engine/masterschedule/internal/repository"
	"github.com/sma-engine/masterschedule/internal/service"
	"github.com/sma-engine/masterschedule/pkg/cache"
	"github.com/sma-engine/masterschedule/pkg/config"
	"github.com/sma-engine/masterschedule/pkg/database"
	"github.com/sma-engine/masterschedule/pkg/logger"
	corsmiddleware "github.com/sma-engine/masterschedule/pkg/middleware/cors"
	reqidmiddleware "github.com/sma-engine/masterschedule/pkg/middleware/requestid"
	"github.com/sma-engine/masterschedule/pkg/storage"
)

// @title SMA Master Schedule API
// @version 0.1.0
// @description Generates and commits high-school master schedules from the teacher, student, and course catalog
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	userRepo := repository.NewUserRepository(db)
	runRepo := repository.NewRunRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, 10*time.Minute, logr, true)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "sma-masterschedule",
		Audience:          []string{"sma-masterschedule"},
	})
	userService := service.NewUserService(userRepo, validate, logr)
	teacherService := service.NewTeacherService(teacherRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, validate, logr)
	runService := service.NewRunService(
		teacherRepo, studentRepo, courseRepo, roomRepo,
		runRepo, sectionRepo, db,
		validate, logr, metricsService, cacheService,
		service.RunServiceConfig{ProposalTTL: cfg.Scheduler.ProposalTTL},
	)
	defer runService.Shutdown()

	reportService := service.NewReportExportService(
		runRepo, sectionRepo, fileStore, signer,
		service.ReportExportConfig{APIPrefix: cfg.APIPrefix},
		logr, nil, nil,
	)
	catalogImportService := service.NewCatalogImportService(teacherRepo, studentRepo, courseRepo, roomRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	teacherHandler := handler.NewTeacherHandler(teacherService)
	studentHandler := handler.NewStudentHandler(studentService)
	runHandler := handler.NewRunHandler(runService)
	reportHandler := handler.NewReportHandler(reportService)
	catalogHandler := handler.NewCatalogHandler(catalogImportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	authed.GET("/auth/me", authHandler.Me)

	staff := authed.Group("/teachers")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleViewer))
	staff.GET("", teacherHandler.List)
	staff.GET("/:id", teacherHandler.Get)
	staff.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar), teacherHandler.Create)
	staff.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar), teacherHandler.Update)
	staff.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), teacherHandler.Delete)

	students := authed.Group("/students")
	students.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleViewer))
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar), studentHandler.Create)
	students.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar), studentHandler.Update)
	students.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), studentHandler.Delete)

	runs := authed.Group("/runs")
	runs.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleViewer))
	runs.GET("", runHandler.List)
	runs.GET("/:id/sections", runHandler.GetSections)
	runs.GET("/:id/summary", runHandler.GetSummary)
	runs.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar), runHandler.Generate)
	runs.POST("/commit", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar), runHandler.Commit)
	runs.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), runHandler.Delete)
	runs.POST("/:id/report/export", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleViewer), reportHandler.Export)

	authed.GET("/reports/download/:token", reportHandler.Download)

	authed.POST("/catalog/import", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar), catalogHandler.Import)

	users := authed.Group("/users")
	users.Use(middleware.RequireRoles(models.RoleAdmin))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Sugar().Infow("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("http server shutdown error", "error", err)
	}
}
