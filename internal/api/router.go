package api

import (
	"github.com/gin-gonic/gin"

	"github.com/todolistapi/backend/internal/handler"
	"github.com/todolistapi/backend/internal/middleware"
)

func SetupRouter(
	authHandler *handler.AuthHandler,
	itemHandler *handler.ToDoItemHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(rateLimitMiddleware.Handle())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth routes (Public)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh-token", authHandler.RefreshToken)
	r.POST("/logout", authHandler.Logout)

	// Protected item routes
	api := r.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/ToDoItems", itemHandler.List)
		api.GET("/ToDoItems/:itemId", itemHandler.GetByID)
		api.POST("/ToDoItems", itemHandler.Create)
		api.PUT("/ToDoItems/:itemId", itemHandler.Update)
		api.DELETE("/ToDoItems/:itemId", itemHandler.Delete)
	}

	return r
}
