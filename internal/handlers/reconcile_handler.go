package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/cache"
	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/service"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

type ReconcileHandler struct {
	reconciler *service.Reconciler
	cache      *cache.OrderCache
}

func NewReconcileHandler(reconciler *service.Reconciler, orderCache *cache.OrderCache) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler, cache: orderCache}
}

// Refresh reconciles the session's cached intent against the backend's
// order list. Idempotent, so the UI may call it from any trigger.
func (h *ReconcileHandler) Refresh(c *gin.Context) {
	session := c.Param("session")
	customerToken := c.Query("customer")
	if customerToken == "" {
		customerToken = session
	}

	report, err := h.reconciler.Refresh(c.Request.Context(), session, customerToken)
	if err != nil {
		telemetry.Logger.Error("Error refreshing reconciliation",
			zap.String("session", session),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to refresh order state, try again"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// PutIntent stores the session's pending order intent, overwriting any
// prior one.
func (h *ReconcileHandler) PutIntent(c *gin.Context) {
	var intent models.CachedOrderIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if intent.IntentID == "" {
		intent.IntentID = uuid.NewString()
	}
	if intent.OrderID == "" {
		// Provisional id until the backend materializes the order.
		intent.OrderID = uuid.NewString()
	}
	intent.CreatedAt = time.Now()

	if err := h.cache.Put(c.Request.Context(), c.Param("session"), &intent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store intent"})
		return
	}

	c.JSON(http.StatusOK, intent)
}

func (h *ReconcileHandler) DeleteIntent(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context(), c.Param("session")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear intent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
