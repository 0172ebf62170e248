package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shankarelec/stocktrack/internal/auth"
	"github.com/shankarelec/stocktrack/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. Every data
// route sits behind the session check; only health and login are open.
func New(inventoryHandler *handlers.InventoryHandler, authHandler *handlers.AuthHandler, provider *auth.Provider, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(sessionMiddleware(provider))
	{
		protected.POST("/logout", authHandler.Logout)
		protected.POST("/inventory", inventoryHandler.Create)
		protected.POST("/inventory/:id/sell", inventoryHandler.Sell)
		protected.POST("/inventory/:id/return", inventoryHandler.Return)
		protected.GET("/inventory", inventoryHandler.List)
		protected.GET("/sales", inventoryHandler.Sales)
		protected.POST("/export", inventoryHandler.Export)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func sessionMiddleware(provider *auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := handlers.BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := provider.CurrentUser(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("client_ip", c.ClientIP()))
	}
}
