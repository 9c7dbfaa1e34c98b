package status_test

import (
	"encoding/json"
	"testing"

	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/status"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		order models.Order
		want  models.PaymentState
	}{
		{
			"fully paid",
			models.Order{TotalPrice: 500000, TotalPaid: 500000},
			models.StatePaid,
		},
		{
			"overpaid",
			models.Order{TotalPrice: 500000, TotalPaid: 600000},
			models.StatePaid,
		},
		{
			"paid outranks rejected code",
			models.Order{TotalPrice: 500000, TotalPaid: 500000, PaymentStatus: models.PaymentCodeRejected},
			models.StatePaid,
		},
		{
			"partial payment",
			models.Order{TotalPrice: 500000, TotalPaid: 100000},
			models.StateDownPayment,
		},
		{
			"rejected",
			models.Order{TotalPrice: 500000, PaymentStatus: models.PaymentCodeRejected},
			models.StateRejected,
		},
		{
			"proof awaiting validation",
			models.Order{TotalPrice: 500000, ProofRef: "bukti-17.jpg", PaidAt: "12-01-2026 09:30:00"},
			models.StatePendingValidation,
		},
		{
			"proof without timestamp stays unpaid",
			models.Order{TotalPrice: 500000, ProofRef: "bukti-17.jpg"},
			models.StateUnpaid,
		},
		{
			"zero price zero paid",
			models.Order{},
			models.StateUnpaid,
		},
		{
			"missing status code treated as unpaid",
			models.Order{TotalPrice: 500000, PaymentStatus: 0},
			models.StateUnpaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status.Derive(&tt.order); got != tt.want {
				t.Errorf("Derive() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveNilOrder(t *testing.T) {
	if got := status.Derive(nil); got != models.StateUnpaid {
		t.Errorf("Derive(nil) = %s, want UNPAID", got)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	order := &models.Order{TotalPrice: 250000, TotalPaid: 100000}
	first := status.Derive(order)
	for i := 0; i < 10; i++ {
		if got := status.Derive(order); got != first {
			t.Fatalf("Derive() flipped from %s to %s on call %d", first, got, i)
		}
	}
}

// Numeric and string encodings of the same code must land in the same
// branch after the unmarshal boundary.
func TestDeriveCodeEncodings(t *testing.T) {
	raws := []string{
		`{"total_price": 500000, "total_paid": 0, "status_pembayaran": 3}`,
		`{"total_price": "500000", "total_paid": "0", "status_pembayaran": "3"}`,
	}

	for _, raw := range raws {
		var order models.Order
		if err := json.Unmarshal([]byte(raw), &order); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got := status.Derive(&order); got != models.StateRejected {
			t.Errorf("Derive(%s) = %s, want REJECTED", raw, got)
		}
	}
}

func TestDeriveLifecycleScenario(t *testing.T) {
	order := &models.Order{TotalPrice: 500000}
	if got := status.Derive(order); got != models.StateUnpaid {
		t.Fatalf("fresh order derived %s, want UNPAID", got)
	}

	order.ProofRef = "transfer-bca.png"
	order.PaidAt = "15-02-2026 14:00:00"
	if got := status.Derive(order); got != models.StatePendingValidation {
		t.Fatalf("after proof upload derived %s, want PENDING_VALIDATION", got)
	}

	order.TotalPaid = 500000
	if got := status.Derive(order); got != models.StatePaid {
		t.Fatalf("after full payment derived %s, want PAID", got)
	}
}
