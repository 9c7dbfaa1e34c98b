package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

// UIFilterState is the raw filter selection as it leaves the dashboard
// widgets, empties and all.
type UIFilterState struct {
	Products      []int64 `json:"produk"`
	OrderStatus   string  `json:"status_order"`
	PaymentStatus string  `json:"status_pembayaran"`
	Label         string  `json:"label"`
	AgentID       string  `json:"sales_id"`
}

type broadcastSender interface {
	Send(ctx context.Context, req *models.BroadcastRequest) (*models.BroadcastResponse, error)
}

// BroadcastTargetBuilder turns UI filter state into the server-bound
// target payload and reports zero-recipient outcomes distinctly from
// failures.
type BroadcastTargetBuilder struct {
	sender broadcastSender
}

func NewBroadcastTargetBuilder(sender broadcastSender) *BroadcastTargetBuilder {
	return &BroadcastTargetBuilder{sender: sender}
}

// Normalize drops every empty dimension so the backend's no-constraint
// default applies. Present dimensions apply conjunctively.
func Normalize(ui UIFilterState) models.BroadcastFilter {
	filter := models.BroadcastFilter{
		OrderStatus:   strings.TrimSpace(ui.OrderStatus),
		PaymentStatus: strings.TrimSpace(ui.PaymentStatus),
		Label:         strings.TrimSpace(ui.Label),
		AgentID:       strings.TrimSpace(ui.AgentID),
	}
	if len(ui.Products) > 0 {
		filter.Products = ui.Products
	}
	return filter
}

// DescribeZeroMatch spells out which filters were active when a broadcast
// matched nobody, so the operator can loosen the right one. No automatic
// retry or relaxation happens here.
func DescribeZeroMatch(filter models.BroadcastFilter, productName func(int64) string) string {
	if filter.Empty() {
		return "no recipients matched: the customer list is empty"
	}

	var parts []string
	if len(filter.Products) > 0 {
		names := make([]string, 0, len(filter.Products))
		for _, id := range filter.Products {
			name := ""
			if productName != nil {
				name = productName(id)
			}
			if name == "" {
				name = fmt.Sprintf("#%d", id)
			}
			names = append(names, name)
		}
		parts = append(parts, "product "+strings.Join(names, ", "))
	}
	if filter.OrderStatus != "" {
		parts = append(parts, "order status "+filter.OrderStatus)
	}
	if filter.PaymentStatus != "" {
		parts = append(parts, "payment status "+filter.PaymentStatus)
	}
	if filter.Label != "" {
		parts = append(parts, "label "+filter.Label)
	}
	if filter.AgentID != "" {
		parts = append(parts, "agent "+filter.AgentID)
	}
	return "no recipients matched the active filters: " + strings.Join(parts, " AND ")
}

// Dispatch sends the broadcast and folds the total-target count into an
// operator-facing result. Zero matches is a warning, never an error.
func (b *BroadcastTargetBuilder) Dispatch(ctx context.Context, message string, ui UIFilterState, sendAt time.Time, productName func(int64) string) (*models.BroadcastResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Field: "message", Reason: "must not be empty"}
	}

	filter := Normalize(ui)
	req := &models.BroadcastRequest{
		Message: message,
		Target:  filter,
		SendNow: sendAt.IsZero(),
	}
	if !sendAt.IsZero() {
		req.SendAt = sendAt.Format("02-01-2006 15:04:05")
	}

	resp, err := b.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &models.BroadcastResult{TotalTarget: resp.Data.TotalTarget}
	if resp.Data.TotalTarget == 0 {
		result.ZeroMatch = true
		result.Description = DescribeZeroMatch(filter, productName)
		telemetry.Logger.Warn("Broadcast matched no recipients",
			zap.String("description", result.Description),
		)
	}
	return result, nil
}
