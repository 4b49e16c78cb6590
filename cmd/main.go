package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modulearn/backend/internal/clients/redis"
	"github.com/modulearn/backend/internal/content"
	"github.com/modulearn/backend/internal/data/aggregates"
	"github.com/modulearn/backend/internal/data/db"
	"github.com/modulearn/backend/internal/data/repos"
	"github.com/modulearn/backend/internal/handlers"
	"github.com/modulearn/backend/internal/middleware"
	"github.com/modulearn/backend/internal/observability"
	"github.com/modulearn/backend/internal/platform/config"
	"github.com/modulearn/backend/internal/platform/logger"
	"github.com/modulearn/backend/internal/server"
	"github.com/modulearn/backend/internal/services"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownTracing := observability.InitTracing(context.Background(), log, cfg, observability.TracingConfig{
		ServiceName: "modulearn",
		Environment: cfg.LogMode,
	})
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	// Relational store
	dbService, err := db.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to open relational store", "error", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Sessions
	sessions, err := redis.NewSessionStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to redis", "error", err)
	}
	defer sessions.Close()

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(theDB, log)
	courseRepo := repos.NewCourseRepo(theDB, log)
	moduleRepo := repos.NewCourseModuleRepo(theDB, log)
	itemRepo := repos.NewCourseItemRepo(theDB, log)
	itemProgRepo := repos.NewItemProgressRepo(theDB, log)
	moduleProgRepo := repos.NewModuleProgressRepo(theDB, log)
	courseProgRepo := repos.NewCourseProgressRepo(theDB, log)
	enrollRepo := repos.NewEnrollmentRepo(theDB, log)

	// Services
	log.Info("Setting up services...")
	txRunner := aggregates.NewGormTxRunner(theDB)
	resolver := content.NewResolver(log, content.DefaultRegistry(theDB, log))
	itemStore := services.NewItemProgressStore(theDB, log, itemProgRepo)
	moduleAgg := services.NewModuleAggregator(theDB, log, itemRepo, itemProgRepo, moduleProgRepo)
	courseAgg := services.NewCourseAggregator(theDB, log, moduleRepo, itemRepo, moduleProgRepo, courseProgRepo)
	cascade := services.NewCascadeCoordinator(
		theDB, log, txRunner, itemStore, moduleAgg, courseAgg,
		itemRepo, moduleRepo, itemProgRepo, moduleProgRepo, courseProgRepo,
	)
	authoring := services.NewAuthoringService(theDB, log, courseRepo, itemRepo)
	assembler := services.NewViewAssembler(theDB, log, courseRepo, enrollRepo, itemProgRepo, moduleProgRepo, courseProgRepo, resolver)
	enrollment := services.NewEnrollmentService(theDB, log, courseRepo, enrollRepo)
	auth := services.NewAuthService(
		theDB, log, userRepo, sessions,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTokenTTL)*time.Second,
		time.Duration(cfg.Auth.RefreshTokenTTL)*time.Second,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(log, auth)
	courseHandler := handlers.NewCourseHandler(log, authoring, assembler, enrollment, cascade)
	progressHandler := handlers.NewProgressHandler(log, cascade)
	authMiddleware := middleware.NewAuthMiddleware(log, auth)

	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		CourseHandler:   courseHandler,
		ProgressHandler: progressHandler,
	})

	log.Info("Starting HTTP server", "addr", cfg.HTTP.Addr)
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		log.Fatal("HTTP server exited", "error", err)
	}
}
