package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/TravisChandler1/ewaede/api/swagger"
	"github.com/TravisChandler1/ewaede/internal/handler"
	"github.com/TravisChandler1/ewaede/internal/middleware"
	"github.com/TravisChandler1/ewaede/internal/models"
	"github.com/TravisChandler1/ewaede/internal/repository"
	"github.com/TravisChandler1/ewaede/internal/service"
	"github.com/TravisChandler1/ewaede/pkg/cache"
	"github.com/TravisChandler1/ewaede/pkg/config"
	"github.com/TravisChandler1/ewaede/pkg/database"
	"github.com/TravisChandler1/ewaede/pkg/jobs"
	"github.com/TravisChandler1/ewaede/pkg/logger"
	corsmiddleware "github.com/TravisChandler1/ewaede/pkg/middleware/cors"
	reqidmiddleware "github.com/TravisChandler1/ewaede/pkg/middleware/requestid"
	"github.com/TravisChandler1/ewaede/pkg/storage"
)

// @title Ewa Ede API
// @version 1.0.0
// @description Yoruba language learning platform backend
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
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Storage.SignedURLTTL)

	welcomeQueue := jobs.NewQueue("newsletter-welcome", func(ctx context.Context, job jobs.Job) error {
		// Mail delivery is not wired up yet; the queue keeps signup latency
		// independent of whatever dispatch ends up behind it.
		logr.Sugar().Infow("welcome dispatch", "email", job.Payload)
		return nil
	}, jobs.QueueConfig{Workers: 2, Logger: logr})
	welcomeQueue.Start(context.Background())
	defer welcomeQueue.Stop()

	r := buildRouter(cfg, logr, db, redisClient, welcomeQueue, store, signer)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, welcomeQueue *jobs.Queue, store *storage.LocalStorage, signer *storage.SignedURLSigner) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	bookClubRepo := repository.NewBookClubRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	newsletterRepo := repository.NewNewsletterRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, profileRepo, applicationRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "ewaede",
	})
	userSvc := service.NewUserService(profileRepo, userRepo, nil, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, profileRepo, userRepo, nil, logr)
	sessionSvc := service.NewSessionService(sessionRepo, nil, logr)
	groupSvc := service.NewGroupService(groupRepo, nil, logr)
	bookClubSvc := service.NewBookClubService(bookClubRepo, nil, logr)
	courseSvc := service.NewCourseService(courseRepo, logr)
	newsletterSvc := service.NewNewsletterService(newsletterRepo, welcomeQueue, nil, logr)
	dashboardSvc := service.NewDashboardService(statsRepo, profileRepo, courseRepo, sessionRepo, groupRepo, bookClubRepo, cacheRepo, metricsSvc, service.DashboardConfig{
		CacheEnabled: cfg.Dashboard.CacheEnabled,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	}, logr)
	reportSvc := service.NewReportService(profileRepo, applicationRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc, dashboardSvc, metricsSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, metricsSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	bookClubHandler := handler.NewBookClubHandler(bookClubSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	newsletterHandler := handler.NewNewsletterHandler(newsletterSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	uploadHandler := handler.NewUploadHandler(store, signer, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	api.POST("/newsletter/subscribe", newsletterHandler.Subscribe)
	api.GET("/files/download", uploadHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/profile", userHandler.GetProfile)
		authed.PUT("/profile", userHandler.UpdateProfile)

		authed.GET("/dashboard", dashboardHandler.Me)

		authed.POST("/applications", applicationHandler.Submit)
		authed.GET("/applications/status", applicationHandler.Status)
		authed.POST("/applications/cv", uploadHandler.UploadCV)

		authed.GET("/courses", courseHandler.List)
		authed.GET("/courses/progress", courseHandler.Progress)

		sessions := authed.Group("/sessions")
		{
			sessions.GET("", sessionHandler.List)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.POST("/:id/register", sessionHandler.Register)
			sessions.DELETE("/:id/register", sessionHandler.Unregister)

			teacherOnly := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
			sessions.POST("", teacherOnly, sessionHandler.Create)
			sessions.PUT("/:id", teacherOnly, sessionHandler.Update)
			sessions.DELETE("/:id", teacherOnly, sessionHandler.Delete)
			sessions.POST("/:id/start", teacherOnly, sessionHandler.Start)
			sessions.POST("/:id/end", teacherOnly, sessionHandler.End)
			sessions.POST("/:id/cancel", teacherOnly, sessionHandler.Cancel)
			sessions.POST("/:id/attendance/:userId", teacherOnly, sessionHandler.MarkAttendance)
			sessions.GET("/:id/participants", teacherOnly, sessionHandler.Participants)
		}

		groups := authed.Group("/groups")
		{
			groups.GET("", groupHandler.List)
			groups.POST("", groupHandler.Create)
			groups.GET("/:id", groupHandler.Get)
			groups.POST("/:id/join", groupHandler.Join)
			groups.POST("/:id/leave", groupHandler.Leave)
			groups.GET("/:id/members", groupHandler.Members)
			groups.GET("/:id/discussions", groupHandler.Discussions)
			groups.POST("/:id/discussions", groupHandler.PostDiscussion)
		}

		clubs := authed.Group("/book-clubs")
		{
			clubs.GET("", bookClubHandler.List)
			clubs.POST("", bookClubHandler.Create)
			clubs.GET("/:id", bookClubHandler.Get)
			clubs.POST("/:id/join", bookClubHandler.Join)
			clubs.POST("/:id/leave", bookClubHandler.Leave)
			clubs.PUT("/:id/progress", bookClubHandler.UpdateProgress)
			clubs.GET("/:id/members", bookClubHandler.Members)
			clubs.GET("/:id/discussions", bookClubHandler.Discussions)
			clubs.POST("/:id/discussions", bookClubHandler.PostDiscussion)
		}

		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/dashboard", dashboardHandler.Admin)

			admin.GET("/users", userHandler.List)
			admin.GET("/users/:id", userHandler.Get)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Deactivate)

			admin.GET("/applications", applicationHandler.List)
			admin.GET("/applications/:id", applicationHandler.Get)
			admin.POST("/applications/:id/review", applicationHandler.Review)

			if cfg.Reports.Enabled {
				exportAudit := middleware.Audit(userRepo, models.AuditActionReportExport, "report")
				admin.GET("/reports/users", exportAudit, reportHandler.Users)
				admin.GET("/reports/applications", exportAudit, reportHandler.Applications)
			}
		}
	}

	return r
}
