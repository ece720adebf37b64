package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/admin"
	"github.com/playmatatu/billiards/internal/api/handlers"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/middleware"
	"github.com/playmatatu/billiards/internal/ws"
)

// SetupRoutes configures all API routes. history and relay may be nil.
func SetupRoutes(router *gin.Engine, m *game.SessionManager, history handlers.SessionHistory, relay *ws.EventRelay, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(m, cfg))
			sessions.GET("/:id", handlers.GetSession(m))
			sessions.GET("/:id/shots", handlers.ListShots(history))
			sessions.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), ws.NewHandler(m, cfg.JWTSecret).HandleSession)
		}

		if relay == nil {
			relay = ws.NewEventRelay(nil)
		}
		v1.GET("/events", middleware.WebSocketCORSCheck(cfg), relay.HandleEvents)

		adminGroup := v1.Group("/admin", admin.RequireToken(cfg.AdminTokenHash))
		{
			adminGroup.DELETE("/sessions/:id", handlers.RemoveSession(m))
		}
	}
}
