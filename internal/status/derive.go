package status

import (
	"github.com/edumart/order-reconciler/internal/models"
)

// Derive maps an order's raw payment fields to its canonical payment
// state. Total over all inputs; the same raw fields always produce the
// same state. Precedence matters because raw signals can disagree:
// paid-amount evidence outranks a stale status code.
func Derive(order *models.Order) models.PaymentState {
	if order == nil {
		return models.StateUnpaid
	}

	paid := int64(order.TotalPaid)
	price := int64(order.TotalPrice)

	switch {
	case price > 0 && paid >= price:
		return models.StatePaid
	case paid > 0 && paid < price:
		return models.StateDownPayment
	case int(order.PaymentStatus) == models.PaymentCodeRejected:
		return models.StateRejected
	case order.ProofRef != "" && order.PaidAt != "" && int(order.PaymentStatus) != models.PaymentCodePaid:
		return models.StatePendingValidation
	}
	return models.StateUnpaid
}

// IsSettled reports whether an order needs no further payment action.
func IsSettled(order *models.Order) bool {
	return Derive(order) == models.StatePaid
}

// IsCompleted reports whether the raw order-status code marks the order
// as successfully finished.
func IsCompleted(order *models.Order) bool {
	return order != nil && int(order.OrderStatus) == models.OrderCodeCompleted
}
