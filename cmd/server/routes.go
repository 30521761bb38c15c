package main

import (
	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/config"
	"github.com/konstanta-tech/tracker/internal/handlers"
	"github.com/konstanta-tech/tracker/internal/middleware"
	"github.com/konstanta-tech/tracker/internal/permission"
	"github.com/konstanta-tech/tracker/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, app *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.CORS.AllowOrigins))
	r.Use(middleware.AuditLog(app.activityService))

	authHandler := handlers.NewAuthHandler(app.db, cfg, app.events)
	userHandler := handlers.NewUserHandler(app.db, app.events)
	projectHandler := handlers.NewProjectHandler(app.db, app.events)
	taskHandler := handlers.NewTaskHandler(app.db, app.events)
	commentHandler := handlers.NewCommentHandler(app.db, app.events)
	adminHandler := handlers.NewAdminHandler(app.db)
	eventHandler := handlers.NewEventHandler(app.events)
	healthHandler := handlers.NewHealthHandler(app.db, app.events)

	authenticator := authHandler.Authenticator()
	credentialLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	r.GET("/health", healthHandler.CheckHealth)

	// Public credential endpoints. Registration identifies an admin caller
	// when a token is sent so they may choose the new user's role.
	r.POST("/login", credentialLimiter.Middleware(), authHandler.Login)
	r.POST("/users", credentialLimiter.Middleware(), middleware.OptionalAuth(authenticator), authHandler.Register)

	// Event stream accepts ?token= since EventSource cannot set headers.
	r.GET("/events", middleware.TokenFromQuery(), middleware.AuthRequired(authenticator), eventHandler.Stream)

	protected := r.Group("")
	protected.Use(middleware.AuthRequired(authenticator))
	{
		protected.GET("/me", authHandler.Me)

		// Users
		protected.GET("/users", middleware.RequirePermission(permission.ViewUsers), userHandler.List)
		protected.GET("/users/:id", middleware.RequirePermission(permission.ViewUsers), userHandler.GetByID)
		protected.PATCH("/users/:id", userHandler.Update)
		protected.DELETE("/users/:id", userHandler.Delete)

		// Projects
		protected.GET("/projects", middleware.RequirePermission(permission.ViewProjects), projectHandler.List)
		protected.GET("/projects/:id", middleware.RequirePermission(permission.ViewProjects), projectHandler.GetByID)
		protected.POST("/projects", projectHandler.Create)
		protected.PATCH("/projects/:id", projectHandler.Update)
		protected.DELETE("/projects/:id", projectHandler.Delete)

		// Tasks
		protected.GET("/tasks", middleware.RequirePermission(permission.ViewTasks), taskHandler.List)
		protected.GET("/tasks/:id", middleware.RequirePermission(permission.ViewTasks), taskHandler.GetByID)
		protected.POST("/tasks", taskHandler.Create)
		protected.PATCH("/tasks/:id", taskHandler.Update)
		protected.POST("/tasks/:id/move", taskHandler.Move)
		protected.DELETE("/tasks/:id", taskHandler.Delete)

		// Comments
		protected.GET("/comments", commentHandler.List)
		protected.POST("/comments", middleware.RequirePermission(permission.Comment), commentHandler.Create)
		protected.PATCH("/comments/:id", commentHandler.Update)
		protected.PUT("/comments/:id", commentHandler.Update)
		protected.DELETE("/comments/:id", commentHandler.Delete)
		protected.DELETE("/comments/:id/attachments/:attachmentId", commentHandler.DeleteAttachment)

		// Administration
		admin := protected.Group("", middleware.AdminRequired())
		{
			admin.GET("/export", adminHandler.Export)
			admin.GET("/activity", adminHandler.Activity)
		}
	}
}
