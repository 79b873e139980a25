package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taskhive/engine/internal/api"
	"github.com/taskhive/engine/internal/api/handlers"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/internal/services"
	"github.com/taskhive/engine/pkg/config"
	"github.com/taskhive/engine/pkg/database"
	"github.com/taskhive/engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting TaskHive Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Services
	recorder := services.NewActivityRecorder()
	taskSvc := services.NewTaskService(db, taskRepo, userRepo, projectRepo, memberRepo, recorder)
	projectSvc := services.NewProjectService(db, projectRepo, memberRepo, recorder)
	memberSvc := services.NewMemberService(db, projectRepo, memberRepo, userRepo, recorder)
	tagSvc := services.NewTagService(db, tagRepo, recorder)
	noteSvc := services.NewNoteService(db, noteRepo, taskSvc)
	activitySvc := services.NewActivityService(activityRepo)
	analyticsSvc := services.NewAnalyticsService(db)

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	// Handlers
	router := api.NewRouter(api.Dependencies{
		HMACSecret:       jwtSecret,
		HealthHandler:    handlers.NewHealthHandler(db),
		AuthHandler:      handlers.NewAuthHandler(userRepo, jwtSecret),
		TasksHandler:     handlers.NewTasksHandler(taskSvc, userRepo),
		ProjectsHandler:  handlers.NewProjectsHandler(projectSvc, memberSvc, userRepo),
		TagsHandler:      handlers.NewTagsHandler(tagSvc, userRepo),
		NotesHandler:     handlers.NewNotesHandler(noteSvc, userRepo),
		ActivityHandler:  handlers.NewActivityHandler(activitySvc, userRepo),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc, userRepo),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
