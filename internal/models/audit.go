package models

import "time"

// StateAuditInfo is one row of the derived-state audit trail: the last
// payment state reconciliation observed for an order.
type StateAuditInfo struct {
	OrderID       string
	State         string
	PreviousState string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StateChangedEvent is published whenever reconciliation observes a
// derived payment state differing from the recorded one.
type StateChangedEvent struct {
	OrderID       string       `json:"order_id"`
	State         PaymentState `json:"state"`
	PreviousState PaymentState `json:"previous_state"`
	Timestamp     time.Time    `json:"timestamp"`
}
