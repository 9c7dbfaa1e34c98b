package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/service"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

type TimelineHandler struct {
	sequencer *service.FollowUpSequencer
}

func NewTimelineHandler(sequencer *service.FollowUpSequencer) *TimelineHandler {
	return &TimelineHandler{sequencer: sequencer}
}

// Timeline returns the customer's follow-up slot projection. The order
// query parameter narrows the match; without it every log of the
// customer counts.
func (h *TimelineHandler) Timeline(c *gin.Context) {
	customerID := c.Param("id")
	orderID := c.Query("order")

	slots, err := h.sequencer.Timeline(c.Request.Context(), customerID, orderID)
	if err != nil {
		telemetry.Logger.Error("Error computing timeline",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load follow-up timeline"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id": customerID,
		"order_id":    orderID,
		"slots":       slots,
	})
}
