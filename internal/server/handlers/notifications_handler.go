package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/notify"
	"github.com/mamadbah2/hatchlog/internal/service/tracker"
)

const keepAliveInterval = 25 * time.Second

// NotificationHandler serves the transient notification feed and the live
// event stream.
type NotificationHandler struct {
	feed    *notify.Feed
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// NewNotificationHandler constructs the HTTP handler adapter.
func NewNotificationHandler(feed *notify.Feed, t *tracker.Tracker, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{feed: feed, tracker: t, logger: logger}
}

// List returns the caller's unexpired notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Recent(userID(c)))
}

// Stream pushes a "views" event with the dashboard after every snapshot
// change and a "notification" event for each new notification.
func (h *NotificationHandler) Stream(c *gin.Context) {
	uid := userID(c)
	ctx := c.Request.Context()

	session, err := h.tracker.Session(ctx, uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	changes := session.Changes(ctx)
	notes := h.feed.Listen(ctx, uid)
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if !h.sendViews(c, session) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok || !h.sendViews(c, session) {
				return
			}
		case n, ok := <-notes:
			if !ok {
				return
			}
			c.SSEvent("notification", n)
			c.Writer.Flush()
		case <-keepAlive.C:
			_, _ = c.Writer.WriteString(": ping\n\n")
			c.Writer.Flush()
		}
	}
}

func (h *NotificationHandler) sendViews(c *gin.Context, s *tracker.Session) bool {
	dashboard, err := s.Dashboard()
	if err != nil {
		h.logger.Error("render stream views", zap.String("user_id", s.UserID()), zap.Error(err))
		return false
	}
	c.SSEvent("views", dashboard)
	c.Writer.Flush()
	return true
}
