package service

import (
	"context"

	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/status"
)

type followUpReader interface {
	Logs(ctx context.Context, customerID string) ([]models.FollowUpLog, error)
}

type orderLister interface {
	OpenOrders(ctx context.Context, customerToken string) ([]models.Order, error)
}

// FollowUpSequencer projects the follow-up log stream onto the fixed
// seven-slot timeline shown next to each order. Display-only; lighting a
// slot has no side effects.
type FollowUpSequencer struct {
	followups followUpReader
	orders    orderLister
}

func NewFollowUpSequencer(followups followUpReader, orders orderLister) *FollowUpSequencer {
	return &FollowUpSequencer{followups: followups, orders: orders}
}

// Timeline fetches the customer's logs and matching order, then computes
// the slot projection. orderID may be empty; the match then widens to
// every log of the customer.
func (s *FollowUpSequencer) Timeline(ctx context.Context, customerID, orderID string) ([]models.Slot, error) {
	logs, err := s.followups.Logs(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	if orderID != "" {
		orders, err := s.orders.OpenOrders(ctx, customerID)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			if string(orders[i].ID) == orderID {
				order = &orders[i]
				break
			}
		}
	}

	return ComputeTimeline(customerID, orderID, logs, order), nil
}

// ComputeTimeline is the pure projection. Slots come back in fixed order
// 1..7 regardless of log arrival order; an empty log list lights nothing.
// Slots 6 and 7 are milestones, not send events: they additionally require
// the order to be settled or completed.
func ComputeTimeline(customerID, orderID string, logs []models.FollowUpLog, order *models.Order) []models.Slot {
	lit := make(map[int]bool, models.SlotCount)

	for _, entry := range logs {
		if string(entry.CustomerID) != customerID {
			continue
		}
		// Older log rows lack an order id; those match on customer
		// alone when an order id is present on neither side.
		if orderID != "" && entry.OrderID != "" && string(entry.OrderID) != orderID {
			continue
		}
		if !bool(entry.Success) {
			continue
		}
		if slot := models.SlotOf(entry.Event); slot != 0 {
			lit[slot] = true
		}
	}

	if !status.IsSettled(order) {
		lit[models.SlotPaymentAck] = false
	}
	if !status.IsCompleted(order) {
		lit[models.SlotCompletion] = false
	}

	slots := make([]models.Slot, 0, models.SlotCount)
	for n := 1; n <= models.SlotCount; n++ {
		slots = append(slots, models.Slot{
			Number: n,
			Label:  models.SlotLabel(n),
			Lit:    lit[n],
		})
	}
	return slots
}
