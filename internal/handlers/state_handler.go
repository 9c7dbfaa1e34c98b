package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumart/order-reconciler/internal/interfaces"
)

type OrderStateHandler struct {
	repo interfaces.StateAuditRepository
}

func NewOrderStateHandler(repo interfaces.StateAuditRepository) *OrderStateHandler {
	return &OrderStateHandler{repo: repo}
}

// GetOrderState returns the last derived payment state reconciliation
// recorded for an order.
func (h *OrderStateHandler) GetOrderState(c *gin.Context) {
	orderID := c.Param("id")

	info, err := h.repo.GetByOrderID(c.Request.Context(), orderID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order has not been reconciled yet"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":       orderID,
		"state":          info.State,
		"previous_state": info.PreviousState,
		"created_at":     info.CreatedAt,
		"updated_at":     info.UpdatedAt,
	})
}
