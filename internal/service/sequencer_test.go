package service

import (
	"testing"

	"github.com/edumart/order-reconciler/internal/models"
)

func slotLit(slots []models.Slot, n int) bool {
	for _, s := range slots {
		if s.Number == n {
			return s.Lit
		}
	}
	return false
}

func okLog(customer, order, event string) models.FollowUpLog {
	return models.FollowUpLog{
		CustomerID: models.FlexString(customer),
		OrderID:    models.FlexString(order),
		Event:      event,
		Success:    true,
	}
}

func TestComputeTimelineEmptyLogs(t *testing.T) {
	slots := ComputeTimeline("7", "42", nil, nil)
	if len(slots) != models.SlotCount {
		t.Fatalf("got %d slots, want %d", len(slots), models.SlotCount)
	}
	for _, s := range slots {
		if s.Lit {
			t.Errorf("slot %d lit with no logs", s.Number)
		}
	}
}

func TestComputeTimelineFixedOrder(t *testing.T) {
	logs := []models.FollowUpLog{
		okLog("7", "42", "4"),
		okLog("7", "42", "welcome"),
		okLog("7", "42", "1"),
	}
	slots := ComputeTimeline("7", "42", logs, nil)
	for i, s := range slots {
		if s.Number != i+1 {
			t.Fatalf("slot at index %d has number %d", i, s.Number)
		}
	}
	if !slotLit(slots, 1) || !slotLit(slots, 4) || !slotLit(slots, 5) {
		t.Error("expected slots 1, 4 and 5 lit")
	}
	if slotLit(slots, 2) || slotLit(slots, 3) {
		t.Error("unexpected slots lit")
	}
}

func TestComputeTimelineMonotonicLighting(t *testing.T) {
	logs := []models.FollowUpLog{okLog("7", "42", "1")}
	before := ComputeTimeline("7", "42", logs, nil)

	logs = append(logs, okLog("7", "42", "3"))
	after := ComputeTimeline("7", "42", logs, nil)

	if !slotLit(after, 3) {
		t.Error("new log for slot 3 did not light it")
	}
	for n := 1; n <= models.SlotCount; n++ {
		if n == 3 {
			continue
		}
		if slotLit(before, n) != slotLit(after, n) {
			t.Errorf("slot %d changed state", n)
		}
	}
}

func TestComputeTimelineFiltering(t *testing.T) {
	logs := []models.FollowUpLog{
		okLog("7", "42", "1"),
		okLog("7", "99", "2"),  // other order
		okLog("8", "42", "3"),  // other customer
		okLog("7", "", "4"),    // legacy row without order id
		{CustomerID: "7", OrderID: "42", Event: "2", Success: false}, // unsuccessful send
	}

	slots := ComputeTimeline("7", "42", logs, nil)
	if !slotLit(slots, 1) {
		t.Error("slot 1 should be lit")
	}
	if slotLit(slots, 2) {
		t.Error("slot 2 lit by another order or failed send")
	}
	if slotLit(slots, 3) {
		t.Error("slot 3 lit by another customer")
	}
	// Legacy rows without an order id still count for the customer.
	if !slotLit(slots, 4) {
		t.Error("slot 4 should be lit by the legacy row")
	}

	// Without an order id the match widens to every log of the customer.
	wide := ComputeTimeline("7", "", logs, nil)
	if !slotLit(wide, 1) || !slotLit(wide, 2) || !slotLit(wide, 4) {
		t.Error("customer-wide match missed slots")
	}
}

func TestComputeTimelineMilestoneGates(t *testing.T) {
	logs := []models.FollowUpLog{
		okLog("7", "42", "payment-ack"),
		okLog("7", "42", "completion"),
	}

	// Logs alone do not light milestone slots.
	unpaid := &models.Order{ID: "42", TotalPrice: 500000}
	slots := ComputeTimeline("7", "42", logs, unpaid)
	if slotLit(slots, models.SlotPaymentAck) || slotLit(slots, models.SlotCompletion) {
		t.Error("milestone slots lit without order evidence")
	}

	paid := &models.Order{ID: "42", TotalPrice: 500000, TotalPaid: 500000}
	slots = ComputeTimeline("7", "42", logs, paid)
	if !slotLit(slots, models.SlotPaymentAck) {
		t.Error("payment-ack not lit for settled order")
	}
	if slotLit(slots, models.SlotCompletion) {
		t.Error("completion lit before order completed")
	}

	done := &models.Order{ID: "42", TotalPrice: 500000, TotalPaid: 500000, OrderStatus: models.OrderCodeCompleted}
	slots = ComputeTimeline("7", "42", logs, done)
	if !slotLit(slots, models.SlotCompletion) {
		t.Error("completion not lit for completed order")
	}
}
