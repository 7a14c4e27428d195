package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmwatch/internal/logging"
	"farmwatch/internal/services/notification"
)

// EmailAlerts is the notification service as seen by the API.
type EmailAlerts interface {
	Statistics() notification.Statistics
	SendTest(ctx context.Context, recipient string) error
}

type EmailHandler struct {
	alerts EmailAlerts
}

func NewEmailHandler(alerts EmailAlerts) *EmailHandler {
	return &EmailHandler{alerts: alerts}
}

type TestEmailRequest struct {
	Recipient string `json:"recipient" example:"farmer@example.com"`
}

// @Summary Email alert statistics
// @Tags email
// @Produce json
// @Success 200 {object} notification.Statistics
// @Router /api/email/statistics [get]
func (h *EmailHandler) GetStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.alerts.Statistics())
}

// @Summary Send a test alert
// @Description Send a sample detection alert to the given recipient, or to the default recipient. Subject to rate limiting.
// @Tags email
// @Accept json
// @Produce json
// @Param request body TestEmailRequest false "Recipient"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/email/test [post]
func (h *EmailHandler) SendTest(c *gin.Context) {
	var req TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	err := h.alerts.SendTest(c.Request.Context(), req.Recipient)
	switch {
	case err == nil:
		logging.Info(c).Msg("Test email sent")
		c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Test email sent"})
	case errors.Is(err, notification.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Email not configured"})
	case errors.Is(err, notification.ErrNoRecipient):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No recipient email address available"})
	case errors.Is(err, notification.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "Rate limited", Details: err.Error()})
	default:
		logging.Error(c).Err(err).Msg("Test email failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to send test email", Details: err.Error()})
	}
}
