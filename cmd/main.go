package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sikshyahq/sikshya-backend/internal/clients/redis"
	"github.com/sikshyahq/sikshya-backend/internal/db"
	"github.com/sikshyahq/sikshya-backend/internal/handlers"
	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/middleware"
	"github.com/sikshyahq/sikshya-backend/internal/observability"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/server"
	"github.com/sikshyahq/sikshya-backend/internal/services"
	"github.com/sikshyahq/sikshya-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (no-op unless OTEL_ENABLED is set)
	if shutdownTracing := observability.InitTracing(context.Background(), log, observability.Config{
		Environment: logMode,
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	}); shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 604800, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	folderRepo := repos.NewFolderRepo(thePG, log)
	noteRepo := repos.NewNoteRepo(thePG, log)
	enrollmentRepo := repos.NewEnrollmentRepo(thePG, log)
	messageRepo := repos.NewMessageRepo(thePG, log)
	userStatsRepo := repos.NewUserStatsRepo(thePG, log)
	studySessionRepo := repos.NewStudySessionRepo(thePG, log)
	noteCompletionRepo := repos.NewNoteCompletionRepo(thePG, log)

	// Redis (optional; leaderboard falls back to Postgres when absent)
	var leaderboardCache redis.Cache
	if cache, err := redis.NewCache(log); err != nil {
		log.Warn("Redis cache unavailable, leaderboard reads go to Postgres", "error", err)
	} else {
		leaderboardCache = cache
	}

	// AI tutor (optional; chat still records rewards when absent)
	var aiClient services.AIClient
	if client, err := services.NewAIClient(log); err != nil {
		log.Warn("AI client unavailable, tutor responses disabled", "error", err)
	} else {
		aiClient = client
	}

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	courseService := services.NewCourseService(thePG, log, courseRepo, folderRepo, enrollmentRepo)
	noteService := services.NewNoteService(thePG, log, noteRepo, folderRepo, noteCompletionRepo, courseService)
	statsService := services.NewStatsService(thePG, log, userStatsRepo)
	activityService := services.NewActivityService(thePG, log, statsService, userStatsRepo, studySessionRepo)
	chatRewardService := services.NewChatRewardService(thePG, log, statsService, userStatsRepo, studySessionRepo, messageRepo, noteRepo)
	tutorService := services.NewTutorService(thePG, log, messageRepo, aiClient)
	leaderboardService := services.NewLeaderboardService(thePG, log, studySessionRepo, noteCompletionRepo, enrollmentRepo, userRepo, leaderboardCache)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	courseHandler := handlers.NewCourseHandler(courseService)
	noteHandler := handlers.NewNoteHandler(noteService)
	chatHandler := handlers.NewChatHandler(log, chatRewardService, tutorService, messageRepo)
	activityHandler := handlers.NewActivityHandler(activityService)
	statsHandler := handlers.NewStatsHandler(statsService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		UserHandler:        userHandler,
		CourseHandler:      courseHandler,
		NoteHandler:        noteHandler,
		ChatHandler:        chatHandler,
		ActivityHandler:    activityHandler,
		StatsHandler:       statsHandler,
		LeaderboardHandler: leaderboardHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
