package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/service"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

type broadcastBody struct {
	Message string                `json:"message"`
	Target  service.UIFilterState `json:"target"`
	SendAt  string                `json:"tanggal_kirim"`
}

type BroadcastHandler struct {
	builder *service.BroadcastTargetBuilder
}

func NewBroadcastHandler(builder *service.BroadcastTargetBuilder) *BroadcastHandler {
	return &BroadcastHandler{builder: builder}
}

// Dispatch normalizes the UI filter state and sends the broadcast. A
// zero-recipient outcome comes back as a warning payload, not an error
// status.
func (h *BroadcastHandler) Dispatch(c *gin.Context) {
	var body broadcastBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var sendAt time.Time
	if body.SendAt != "" {
		parsed, err := time.Parse("02-01-2006 15:04:05", body.SendAt)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid tanggal_kirim, expected dd-mm-yyyy HH:mm:ss"})
			return
		}
		sendAt = parsed
	}

	result, err := h.builder.Dispatch(c.Request.Context(), body.Message, body.Target, sendAt, nil)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
			return
		}
		telemetry.Logger.Error("Error dispatching broadcast", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to dispatch broadcast, try again"})
		return
	}

	c.JSON(http.StatusOK, result)
}
