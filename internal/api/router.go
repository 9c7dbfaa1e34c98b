package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edumart/order-reconciler/internal/handlers"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

type Handlers struct {
	Reconcile  *handlers.ReconcileHandler
	Confirm    *handlers.ConfirmHandler
	Timeline   *handlers.TimelineHandler
	Broadcast  *handlers.BroadcastHandler
	OrderState *handlers.OrderStateHandler
}

func NewRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "order-reconciler"})
	})

	sessions := r.Group("/sessions/:session")
	sessions.POST("/refresh", h.Reconcile.Refresh)
	sessions.PUT("/intent", h.Reconcile.PutIntent)
	sessions.DELETE("/intent", h.Reconcile.DeleteIntent)
	sessions.POST("/orders/:id/confirm", h.Confirm.Confirm)

	r.GET("/customers/:id/timeline", h.Timeline.Timeline)
	r.POST("/broadcasts", h.Broadcast.Dispatch)
	r.GET("/orders/:id/state", h.OrderState.GetOrderState)

	return r
}
