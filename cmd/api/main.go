package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/config"
	"github.com/noah-isme/referral-go-api/internal/database"
	"github.com/noah-isme/referral-go-api/internal/handler"
	"github.com/noah-isme/referral-go-api/internal/middleware"
	"github.com/noah-isme/referral-go-api/internal/repository"
	"github.com/noah-isme/referral-go-api/internal/router"
	"github.com/noah-isme/referral-go-api/internal/service"
	cloud "github.com/noah-isme/referral-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), database.RedisOptions{
			URL:         cfg.RedisURL,
			DialTimeout: cfg.RedisDialTimeout,
		})
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, application summaries will not be cached")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	institutionRepo := repository.NewInstitutionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	alumniRepo := repository.NewAlumniRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	institutions := service.NewInstitutionService(institutionRepo, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	directoryService := service.NewDirectoryService(studentRepo, alumniRepo, institutions, validate, logger)
	opportunityService := service.NewOpportunityService(opportunityRepo, directoryService, activityService, validate, logger)
	eligibilityService := service.NewEligibilityService(directoryService, opportunityService, logger)
	summaryCache := service.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, logger)
	applicationService := service.NewApplicationService(applicationRepo, eligibilityService, opportunityService, activityService, summaryCache, validate, logger)
	viewService := service.NewApplicationViewService(applicationService, service.PageDefaults{
		Size: cfg.DefaultPageSize,
		Max:  cfg.MaxPageSize,
	})
	resumeService := service.NewResumeService(uploader, studentRepo, applicationRepo, directoryService, activityService, cfg.ResumeMaxSizeMB, logger)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access database pool: %v", err)
	}
	healthChecks := []handler.DependencyCheck{{Name: "database", Ping: sqlDB.PingContext}}
	if redisClient != nil {
		healthChecks = append(healthChecks, handler.DependencyCheck{
			Name: "cache",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.ResumeMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		DirectoryHandler:   handler.NewDirectoryHandler(directoryService, resumeService, logger),
		OpportunityHandler: handler.NewOpportunityHandler(opportunityService, eligibilityService, logger),
		ApplicationHandler: handler.NewApplicationHandler(applicationService, viewService, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		ApplyLimiter:       middleware.RateLimit("apply", cfg.ApplyRateLimit, cfg.ApplyRateWindow),
		HealthChecks:       healthChecks,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Msg("referral api started")

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
