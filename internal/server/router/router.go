package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/server/handlers"
)

// Handlers groups the route handlers. Webhook is nil when WhatsApp is disabled.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Tracker       *handlers.TrackerHandler
	Notifications *handlers.NotificationHandler
	Webhook       *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, tokens handlers.TokenParser, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(handlers.Authenticate(tokens, logger))
	secured.GET("/me", h.Auth.Me)

	admin := secured.Group("/admin")
	admin.Use(handlers.RequireAdmin())
	admin.POST("/activation-codes", h.Auth.IssueActivationCode)
	if h.Webhook != nil {
		admin.POST("/messages", h.Webhook.SendMessage)
	}

	secured.GET("/incubations", h.Tracker.ListIncubations)
	secured.POST("/incubations", h.Tracker.CreateIncubation)
	secured.POST("/incubations/:id/complete", h.Tracker.CompleteIncubation)
	secured.DELETE("/incubations/:id", h.Tracker.DeleteIncubation)

	secured.GET("/medications", h.Tracker.ListMedications)
	secured.POST("/medications", h.Tracker.CreateMedication)
	secured.DELETE("/medications/:id", h.Tracker.DeleteMedication)

	secured.GET("/feedings", h.Tracker.ListFeedings)
	secured.POST("/feedings", h.Tracker.CreateFeeding)
	secured.DELETE("/feedings/:id", h.Tracker.DeleteFeeding)

	secured.GET("/dashboard", h.Tracker.Dashboard)
	secured.GET("/tasks/today", h.Tracker.TodayTasks)
	secured.GET("/feed/summary", h.Tracker.FeedSummary)
	secured.GET("/calendar/:year/:month", h.Tracker.Month)
	secured.GET("/calendar/:year/:month/:day", h.Tracker.Day)

	secured.GET("/notifications", h.Notifications.List)
	secured.GET("/stream", h.Notifications.Stream)

	logger.Info("router initialized", zap.Bool("webhook", h.Webhook != nil))

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
