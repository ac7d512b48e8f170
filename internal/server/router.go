package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sikshyahq/sikshya-backend/internal/handlers"
	"github.com/sikshyahq/sikshya-backend/internal/middleware"
	"github.com/sikshyahq/sikshya-backend/internal/observability"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	UserHandler        *handlers.UserHandler
	CourseHandler      *handlers.CourseHandler
	NoteHandler        *handlers.NoteHandler
	ChatHandler        *handlers.ChatHandler
	ActivityHandler    *handlers.ActivityHandler
	StatsHandler       *handlers.StatsHandler
	LeaderboardHandler *handlers.LeaderboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(observability.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/user", cfg.UserHandler.GetMe)

	// Courses
	protected.POST("/courses", cfg.CourseHandler.Create)
	protected.GET("/courses", cfg.CourseHandler.GetMine)
	protected.GET("/courses/:courseID", cfg.CourseHandler.Get)
	protected.DELETE("/courses/:courseID", cfg.CourseHandler.Delete)
	protected.POST("/courses/:courseID/enroll", cfg.CourseHandler.Enroll)
	protected.POST("/courses/:courseID/folders", cfg.CourseHandler.CreateFolder)
	protected.GET("/courses/:courseID/folders", cfg.CourseHandler.GetFolders)
	protected.GET("/courses/:courseID/notes", cfg.NoteHandler.GetByCourse)

	// Notes
	protected.POST("/notes", cfg.NoteHandler.Create)
	protected.GET("/notes/:noteID", cfg.NoteHandler.Get)
	protected.DELETE("/notes/:noteID", cfg.NoteHandler.Delete)
	protected.POST("/notes/:noteID/complete", cfg.NoteHandler.Complete)
	protected.GET("/notes/:noteID/messages", cfg.ChatHandler.GetMessages)

	// Gamification
	protected.POST("/activity/ping", cfg.ActivityHandler.Ping)
	protected.POST("/chat/messages", cfg.ChatHandler.SendMessage)
	protected.GET("/stats/me", cfg.StatsHandler.GetMyStats)
	protected.GET("/leaderboard/weekly", cfg.LeaderboardHandler.GetWeekly)

	return router
}
