package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

type PaymentState string

const (
	StateUnpaid            PaymentState = "UNPAID"
	StatePendingValidation PaymentState = "PENDING_VALIDATION"
	StatePaid              PaymentState = "PAID"
	StateRejected          PaymentState = "REJECTED"
	StateDownPayment       PaymentState = "DOWN_PAYMENT"
)

// Raw backend status codes. The backend encodes these inconsistently as
// numbers and strings; StatusCode normalizes both at the unmarshal boundary.
const (
	PaymentCodeUnpaid   = 1
	PaymentCodePaid     = 2
	PaymentCodeRejected = 3

	OrderCodeCompleted = 4
	OrderCodeCanceled  = 5
)

// StatusCode is a backend status code that may arrive as a JSON number,
// a numeric string, or null. Zero means "absent", which downstream logic
// treats the same as the explicit unpaid code.
type StatusCode int

func (c *StatusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*c = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			*c = 0
			return nil
		}
		*c = StatusCode(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		*c = 0
		return nil
	}
	*c = StatusCode(n)
	return nil
}

// FlexString accepts both JSON strings and numbers, for backend ids that
// flip between the two encodings.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// Money is an amount in minor currency units. String encodings such as
// "Rp 500.000" are reduced to their digits.
type Money int64

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*m = 0
			return nil
		}
		*m = Money(DigitsOf(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*m = 0
		return nil
	}
	*m = Money(int64(f))
	return nil
}

// DigitsOf strips every non-digit rune and parses the remainder. A string
// with no digits yields zero.
func DigitsOf(s string) int64 {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	if len(b) == 0 {
		return 0
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Order is the backend's view of a sales order. Orders are never deleted,
// only status-flagged; the canonical payment state is derived, not stored.
type Order struct {
	ID            FlexString `json:"id"`
	TotalPrice    Money      `json:"total_price"`
	ProductPrice  Money      `json:"product_price"`
	ShippingPrice Money      `json:"shipping_price"`
	PaymentStatus StatusCode `json:"status_pembayaran"`
	OrderStatus   StatusCode `json:"status_order"`
	TotalPaid     Money      `json:"total_paid"`
	ProofRef      string     `json:"bukti_pembayaran,omitempty"`
	PaidAt        string     `json:"waktu_pembayaran,omitempty"`
	PaymentMethod string     `json:"metode_pembayaran,omitempty"`
	ProductName   string     `json:"product_name,omitempty"`
	Source        string     `json:"source,omitempty"`
}

// CachedOrderIntent records a payment flow in progress, bridging page and
// channel transitions until the backend's view of the order catches up.
// The order id may be provisional.
type CachedOrderIntent struct {
	IntentID      string    `json:"intent_id"`
	OrderID       string    `json:"order_id"`
	Amount        string    `json:"amount"`
	Method        string    `json:"metode_pembayaran"`
	ProductName   string    `json:"product_name"`
	CustomerName  string    `json:"name"`
	CustomerEmail string    `json:"email"`
	CustomerPhone string    `json:"phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// GatewaySession holds the identifiers handed back by the payment gateway
// when a redirect flow starts. Cleared once settlement is confirmed.
type GatewaySession struct {
	OrderID     string    `json:"order_id"`
	SnapToken   string    `json:"snap_token,omitempty"`
	RedirectURL string    `json:"redirect_url"`
	Method      string    `json:"method"`
	CreatedAt   time.Time `json:"created_at"`
}
