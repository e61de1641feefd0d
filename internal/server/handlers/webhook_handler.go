package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	service "github.com/mamadbah2/hatchlog/internal/service/whatsapp"
)

// WebhookHandler exposes the WhatsApp command channel and the admin
// broadcast endpoint.
type WebhookHandler struct {
	svc       service.MessagingService
	appSecret string
	logger    *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter. When appSecret is
// set, callbacks without a valid X-Hub-Signature-256 are rejected.
func NewWebhookHandler(svc service.MessagingService, appSecret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, appSecret: appSecret, logger: logger}
}

// Verify answers Meta's subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	challenge, err := h.svc.VerifyWebhookToken(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err), zap.String("client_ip", c.ClientIP()))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, challenge)
}

// Receive answers the commands in a callback. Processing errors are logged
// and the callback is still acknowledged.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	if h.appSecret != "" {
		if err := service.VerifySignature(h.appSecret, body, c.GetHeader(service.SignatureHeader)); err != nil {
			h.logger.Warn("rejected unsigned webhook", zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("webhook processing failed",
			zap.Int("messages", len(payload.Messages())),
			zap.Error(err))
	}

	c.Status(http.StatusOK)
}

// SendMessage lets an admin push a WhatsApp message to any number.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("admin message not delivered", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, errorResponse{Error: "unable to send message"})
		return
	}

	h.logger.Info("admin message sent", zap.String("to", req.To), zap.String("admin_id", userID(c)))
	c.Status(http.StatusAccepted)
}
