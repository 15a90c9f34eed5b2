package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LautaroGarc/dardito/internal/activity"
	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/config"
	"github.com/LautaroGarc/dardito/internal/constants"
	"github.com/LautaroGarc/dardito/internal/database"
	"github.com/LautaroGarc/dardito/internal/handlers"
	"github.com/LautaroGarc/dardito/internal/middleware"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/scheduler"
	"github.com/LautaroGarc/dardito/internal/services"
	"github.com/LautaroGarc/dardito/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger, err := zap.NewProduction()
	if cfg.GinMode != "release" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire the document store and services
	clk := clock.System{}
	mutator := store.NewMutator(store.NewGormStore(database.GetDB(), cfg.StoreTimeout))

	authService := services.NewAuthService(mutator, clk)
	projectService := services.NewProjectService(mutator, clk)
	backlogService := services.NewBacklogService(mutator, clk)
	taskService := services.NewTaskService(mutator, clk)
	metricsService := services.NewMetricsService(mutator, clk)
	userService := services.NewUserService(mutator, clk)
	registry := activity.NewRegistry(userService, clk, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Daily sprint sweep
	sweeper := scheduler.New(mutator, projectService, clk, logger)
	sweeper.SweepHour = cfg.SweepHour
	go sweeper.Run(ctx)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	sessionStore, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService, backlogService, taskService)
	metricsHandler := handlers.NewMetricsHandler(metricsService, taskService)
	adminHandler := handlers.NewAdminHandler(userService, authService)
	activityHandler := handlers.NewActivityHandler(registry)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Dardito API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public login, session-backed rest)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(authService), authHandler.GetCurrentUser)
			auth.POST("/regenerate-token", middleware.RequireAuth(authService), authHandler.RegenerateToken)
		}

		// Team-scoped project routes (protected)
		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth(authService))
		{
			teams.POST("/:team/initialize", projectHandler.InitializeProject)
			teams.POST("/:team/reset", projectHandler.ResetProject)
			teams.GET("/:team/metrics", metricsHandler.GetTeamMetrics)

			projects := teams.Group("/:team/projects/:project")
			{
				projects.POST("/advance", projectHandler.AdvanceSprint)
				projects.GET("/backlog", projectHandler.ListBacklog)
				projects.POST("/backlog", projectHandler.CreateBacklogItem)
				projects.POST("/backlog/import", projectHandler.BulkImportBacklog)
				projects.PATCH("/backlog/:item", projectHandler.EditBacklogItem)
				projects.POST("/sprint/select", projectHandler.SelectSprintBacklog)
				projects.GET("/sprint", projectHandler.GetSprint)
				projects.POST("/tasks", projectHandler.CreateTask)
				projects.POST("/tasks/:task/state", projectHandler.UpdateTaskState)
				projects.POST("/tasks/:task/assign", projectHandler.ReassignTask)
				projects.POST("/tasks/:task/comment", projectHandler.CommentTask)
				projects.GET("/metrics", metricsHandler.GetProjectMetrics)
			}
		}

		// Caller-scoped routes (protected)
		me := api.Group("/me")
		me.Use(middleware.RequireAuth(authService))
		{
			me.GET("/tasks", projectHandler.ListMyTasks)
			me.GET("/dashboard", metricsHandler.GetDashboard)
			me.POST("/activity/connect", activityHandler.Connect)
			me.POST("/activity/disconnect", activityHandler.Disconnect)
		}

		// User administration (protected, role-gated)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(authService))
		{
			users.GET("", adminHandler.ListUsers)
			admin := users.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("", adminHandler.RegisterUser)
				admin.POST("/:user/role", adminHandler.ChangeUserRole)
				admin.POST("/:user/team", adminHandler.ChangeUserTeam)
			}
		}

		// Global metrics (protected, cross-team roles)
		api.GET("/metrics/global", middleware.RequireAuth(authService), metricsHandler.GetGlobalMetrics)
	}

	// Start server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("Shutting down")

	// Credit every open call session before the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	registry.FlushAll(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown failed", zap.Error(err))
	}
}
