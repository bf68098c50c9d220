package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	service "github.com/mamadbah2/dairycoop/internal/service/whatsapp"
)

// WebhookHandler serves the WhatsApp callback endpoints and manual notifications.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify echoes hub.challenge when Meta subscribes with our verify token.
func (h *WebhookHandler) Verify(c *gin.Context) {
	challenge, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err), zap.String("request_id", RequestID(c)))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive ingests webhook POST callbacks. Callbacks for other objects are acknowledged and
// dropped. Reply failures are logged and the callback is still acknowledged.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err), zap.String("request_id", RequestID(c)))
		badRequest(c, "invalid payload")
		return
	}

	if payload.Object != "" && payload.Object != models.WhatsAppObject {
		h.logger.Debug("ignoring webhook object", zap.String("object", payload.Object))
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed processing webhook",
			zap.Error(err),
			zap.Int("messages", len(payload.Messages())),
			zap.String("request_id", RequestID(c)))
	}

	c.Status(http.StatusOK)
}

// SendMessage pushes a manual notification to one recipient.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "to and message are required")
		return
	}
	req.To = strings.TrimPrefix(strings.TrimSpace(req.To), "+")

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err), zap.String("to", req.To), zap.String("request_id", RequestID(c)))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"to": req.To})
}
