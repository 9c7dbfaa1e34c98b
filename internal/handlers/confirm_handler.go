package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/service"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

// OrderLister is the read side of the orders API the handler needs to
// resolve the order being confirmed.
type OrderLister interface {
	OpenOrders(ctx context.Context, customerToken string) ([]models.Order, error)
}

type ConfirmHandler struct {
	router *service.PaymentRouter
	orders OrderLister
}

func NewConfirmHandler(router *service.PaymentRouter, orders OrderLister) *ConfirmHandler {
	return &ConfirmHandler{router: router, orders: orders}
}

// Confirm accepts a multipart confirmation submission, routes it to the
// right channel, and executes the flow.
func (h *ConfirmHandler) Confirm(c *gin.Context) {
	session := c.Param("session")
	orderID := c.Param("id")

	input := service.ConfirmInput{
		PayerName:  c.PostForm("name"),
		PayerEmail: c.PostForm("email"),
		Amount:     c.PostForm("amount"),
	}
	if raw := c.PostForm("waktu_pembayaran"); raw != "" {
		if paidAt, err := time.Parse("02-01-2006 15:04:05", raw); err == nil {
			input.PaidAt = paidAt
		}
	}
	if file, header, err := c.Request.FormFile("bukti_pembayaran"); err == nil {
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read proof file"})
			return
		}
		input.Proof = &models.ProofFile{Filename: header.Filename, Content: content}
	}

	order := h.resolveOrder(c, orderID)
	hint := c.PostForm("metode_pembayaran")
	if hint == "" {
		hint = order.PaymentMethod
	}

	decision, err := h.router.Route(order, hint, input)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.router.Confirm(c.Request.Context(), session, decision)
	if err != nil {
		var cherr *service.ChannelError
		if errors.As(err, &cherr) {
			c.JSON(http.StatusConflict, gin.H{"error": cherr.Error()})
			return
		}
		telemetry.Logger.Error("Error confirming payment",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment confirmation failed, try again"})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// resolveOrder looks the order up in the customer's open order list and
// falls back to a skeleton when the backend has not materialized it yet.
func (h *ConfirmHandler) resolveOrder(c *gin.Context, orderID string) *models.Order {
	customerToken := c.PostForm("customer")
	if customerToken == "" {
		customerToken = c.Query("customer")
	}
	if customerToken != "" {
		if orders, err := h.orders.OpenOrders(c.Request.Context(), customerToken); err == nil {
			for i := range orders {
				if string(orders[i].ID) == orderID {
					return &orders[i]
				}
			}
		}
	}
	return &models.Order{
		ID:          models.FlexString(orderID),
		ProductName: c.PostForm("product_name"),
	}
}
