// Package web is the HTTP surface: a gin router serving the JSON API
// with bearer-token auth and the {success, data, message, error}
// response envelope.
package web

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jkkim74/bsTodoList/internal/auth"
	"github.com/jkkim74/bsTodoList/internal/stats"
	"github.com/jkkim74/bsTodoList/internal/store"
	"github.com/jkkim74/bsTodoList/internal/task"
)

// TaskService is the slice of the task lifecycle the handlers use.
type TaskService interface {
	Capture(ctx context.Context, userID int64, req task.CaptureRequest) (*store.Task, error)
	Categorize(ctx context.Context, userID, taskID int64, req task.CategorizeRequest) (*store.Task, error)
	AssignTop3(ctx context.Context, userID, taskID int64, req task.Top3Request) (*store.Task, error)
	Complete(ctx context.Context, userID, taskID int64) (*store.Task, error)
	Uncomplete(ctx context.Context, userID, taskID int64) (*store.Task, error)
	Update(ctx context.Context, userID, taskID int64, req task.UpdateRequest) (*store.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
	DailyOverview(ctx context.Context, userID int64, date string) (*task.Overview, error)
	Incomplete(ctx context.Context, userID int64) (*task.IncompleteGroups, error)
}

// StatsService produces the read-only reports.
type StatsService interface {
	Daily(ctx context.Context, userID int64, start, end string) ([]*store.DayStat, error)
	Weekly(ctx context.Context, userID int64, start, end string) (*stats.WeeklyReport, error)
	Monthly(ctx context.Context, userID int64, year, month int) (*stats.MonthlyReport, error)
}

// AuthService issues and verifies credentials.
type AuthService interface {
	Signup(ctx context.Context, req auth.SignupRequest) (*auth.Session, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error)
	VerifyToken(token string) (*auth.Claims, error)
}

// Server is the API server.
type Server struct {
	tasks  TaskService
	stats  StatsService
	auth   AuthService
	store  *store.Store
	router *gin.Engine
	log    zerolog.Logger
}

// NewServer builds the router and registers all routes.
func NewServer(tasks TaskService, statsSvc StatsService, authSvc AuthService, st *store.Store, logger zerolog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		tasks:  tasks,
		stats:  statsSvc,
		auth:   authSvc,
		store:  st,
		router: router,
		log:    logger,
	}
	router.Use(s.requestLogger())

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", s.handleSignup)
		authRoutes.POST("/login", s.handleLogin)
	}

	protected := api.Group("", s.requireAuth())
	{
		tasks := protected.Group("/tasks")
		{
			tasks.POST("", s.handleCreateTask)
			tasks.GET("/incomplete", s.handleIncompleteTasks)
			tasks.GET("/daily/:date", s.handleDailyOverview)
			tasks.PATCH("/:taskId/categorize", s.handleCategorizeTask)
			tasks.PATCH("/:taskId/top3", s.handleAssignTop3)
			tasks.PATCH("/:taskId/complete", s.handleCompleteTask)
			tasks.PATCH("/:taskId/uncomplete", s.handleUncompleteTask)
			tasks.PUT("/:taskId", s.handleUpdateTask)
			tasks.DELETE("/:taskId", s.handleDeleteTask)
		}

		statsRoutes := protected.Group("/stats")
		{
			statsRoutes.GET("/daily", s.handleDailyStats)
			statsRoutes.GET("/weekly", s.handleWeeklyStats)
			statsRoutes.GET("/monthly", s.handleMonthlyStats)
		}

		protected.POST("/reviews", s.handleUpsertReview)
		protected.GET("/reviews/:date", s.handleGetReview)

		goals := protected.Group("/goals")
		{
			goals.POST("", s.handleCreateGoal)
			goals.GET("/current", s.handleCurrentGoals)
			goals.PATCH("/:goalId/progress", s.handleGoalProgress)
			goals.DELETE("/:goalId", s.handleDeleteGoal)
		}

		notes := protected.Group("/notes")
		{
			notes.POST("", s.handleUpsertNote)
			notes.GET("", s.handleListNotes)
			notes.GET("/:date", s.handleGetNote)
			notes.DELETE("/:noteId", s.handleDeleteNote)
		}

		letgo := protected.Group("/letgo")
		{
			letgo.POST("", s.handleCreateLetGo)
			letgo.GET("/:date", s.handleListLetGo)
			letgo.DELETE("/:letGoId", s.handleDeleteLetGo)
		}
	}

	return s
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("starting server")
	return s.router.Run(addr)
}
