package routes

import (
	"net/http"
	"time"

	"verdebot/handlers"
	"verdebot/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the inbound message webhook.
func RegisterChatRoutes(r *gin.Engine, chat *handlers.ChatHandler) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.RateLimitMiddleware())
		api.POST("/message", chat.HandleMessage)
	}
}

// RegisterHistoryRoutes registers booking-history endpoints.
func RegisterHistoryRoutes(r *gin.Engine, history *handlers.HistoryHandler) {
	api := r.Group("/api/history")
	{
		api.GET("/:userId", history.ListByUser)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm verdebot"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, chat *handlers.ChatHandler, history *handlers.HistoryHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterChatRoutes(r, chat)
	RegisterHistoryRoutes(r, history)
}
