package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/internship-docs-api/api/swagger"
	"github.com/noah-isme/internship-docs-api/internal/handler"
	"github.com/noah-isme/internship-docs-api/internal/middleware"
	"github.com/noah-isme/internship-docs-api/internal/models"
	"github.com/noah-isme/internship-docs-api/internal/notify"
	"github.com/noah-isme/internship-docs-api/internal/repository"
	"github.com/noah-isme/internship-docs-api/internal/service"
	"github.com/noah-isme/internship-docs-api/pkg/cache"
	"github.com/noah-isme/internship-docs-api/pkg/config"
	"github.com/noah-isme/internship-docs-api/pkg/database"
	"github.com/noah-isme/internship-docs-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/internship-docs-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/internship-docs-api/pkg/middleware/requestid"
	"github.com/noah-isme/internship-docs-api/pkg/render"
	"github.com/noah-isme/internship-docs-api/pkg/storage"
)

// @title Internship Documents API
// @version 1.0.0
// @description Issues internship offer letters and completion certificates and verifies them by code.
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
	defer db.Close() //nolint:errcheck

	// Redis backs the verification cache and rate limiter; both degrade
	// gracefully, so a missing Redis only costs performance.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, verification cache and rate limiting disabled", zap.Error(err))
		redisClient = nil
	}

	store, err := storage.NewLocalObjectStore(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init artifact storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	validate := validator.New()

	documentRepo := repository.NewDocumentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)
	documentSvc := service.NewDocumentService(documentRepo, store, render.NewPDFRenderer(), signer, validate, metricsSvc, service.DocumentServiceConfig{
		Bucket:          cfg.Documents.Bucket,
		OfferValidity:   cfg.Documents.OfferValidity,
		UploadTimeout:   cfg.Documents.UploadTimeout,
		PersistTimeout:  cfg.Documents.PersistTimeout,
		APIPrefix:       cfg.APIPrefix,
		PublicArtifacts: cfg.Documents.PublicArtifacts,
		PublicBaseURL:   cfg.Documents.PublicBaseURL,
	}, logr)
	verificationSvc := service.NewVerificationService(documentRepo, cacheRepo, cfg.Verification.CacheTTL, logr)

	sender := notify.NewEmailSender(cfg.Notifications, logr)
	dispatcher := notify.NewDispatcher(sender, cfg.Notifications, logr)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	documentHandler := handler.NewDocumentHandler(documentSvc, dispatcher, logr)
	verificationHandler := handler.NewVerificationHandler(verificationSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

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
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	documents := api.Group("/documents")
	{
		issuance := documents.Group("")
		issuance.Use(middleware.JWT(tokenSvc), middleware.RequireRoles(models.RoleAdmin))
		issuance.POST("/offer-letter", documentHandler.GenerateOfferLetter)
		issuance.POST("/completion-certificate", documentHandler.GenerateCertificate)
		issuance.GET("", documentHandler.ListDocuments)

		documents.GET("/student/:id",
			middleware.JWT(tokenSvc),
			middleware.RBAC(string(models.RoleAdmin), "SELF"),
			documentHandler.ListStudentDocuments,
		)

		// The signed token is the capability; no session required.
		documents.GET("/download/:token", documentHandler.DownloadDocument)
	}

	api.GET("/verify/:code",
		middleware.RateLimit(cacheRepo, cfg.Verification.RateLimit, cfg.Verification.RateLimitWindow, logr),
		verificationHandler.VerifyDocument,
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
