package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contenthub-backend/internal/shared/middleware"
	"contenthub-backend/internal/shared/response"
	"contenthub-backend/pkg/container"
)

func setupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	authed := middleware.AuthGuard(c.AuthStore)
	admin := middleware.AdminGuard(c.UserStore)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.GuestGuard(c.AuthStore), c.AuthHandler.Login)
			auth.POST("/logout", c.AuthHandler.Logout)
			auth.GET("/session", c.AuthHandler.Session)
			auth.GET("/oauth/:provider", middleware.GuestGuard(c.AuthStore), c.AuthHandler.OAuthLogin)
			auth.POST("/reset-password", c.AuthHandler.ResetPassword)
		}

		// Reads are public; writes require a session.
		c.CategoryHandler.RegisterRoutes(v1.Group("/categories"), authed)
		c.EventHandler.RegisterRoutes(v1.Group("/events"), authed)
		c.PeopleHandler.RegisterRoutes(v1.Group("/people"), authed)
		c.ResourceHandler.RegisterRoutes(v1.Group("/resources"), authed)

		// The user collection is admin territory.
		users := v1.Group("/users", authed)
		c.UserHandler.RegisterMeRoutes(users)
		c.UserHandler.RegisterRoutes(users, admin)
	}

	return router
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{"database": "up", "cache": "up"}
		status := http.StatusOK

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["cache"] = "down"
			status = http.StatusServiceUnavailable
		}

		response.Success(ctx, status, checks)
	}
}
