package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Number of fixed follow-up touchpoints per order.
const SlotCount = 7

const (
	SlotReminder1  = 1
	SlotReminder2  = 2
	SlotReminder3  = 3
	SlotReminder4  = 4
	SlotWelcome    = 5
	SlotPaymentAck = 6
	SlotCompletion = 7
)

// TruthyFlag accepts bool, 1/0 and "1"/"0" encodings of a success flag.
type TruthyFlag bool

func (t *TruthyFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("1")), bytes.Equal(data, []byte(`"1"`)), bytes.Equal(data, []byte(`"true"`)):
		*t = true
	default:
		*t = false
	}
	return nil
}

// FollowUpLog is one append-only entry from the follow-up log API.
// Older rows may lack an order id.
type FollowUpLog struct {
	OrderID    FlexString `json:"order_id,omitempty"`
	CustomerID FlexString `json:"customer"`
	Event      string     `json:"event"`
	Success    TruthyFlag `json:"status"`
	CreatedAt  string     `json:"created_at,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// SlotOf maps a raw event identifier, integer or symbolic, to its slot
// number. Unrecognized events map to zero and light nothing.
func SlotOf(event string) int {
	switch strings.ToLower(strings.TrimSpace(event)) {
	case "1", "reminder-1":
		return SlotReminder1
	case "2", "reminder-2":
		return SlotReminder2
	case "3", "reminder-3":
		return SlotReminder3
	case "4", "reminder-4":
		return SlotReminder4
	case "5", "welcome":
		return SlotWelcome
	case "6", "payment-ack":
		return SlotPaymentAck
	case "7", "completion":
		return SlotCompletion
	}
	return 0
}

// SlotLabel is the symbolic name rendered next to a timeline badge.
func SlotLabel(n int) string {
	switch n {
	case SlotReminder1:
		return "reminder-1"
	case SlotReminder2:
		return "reminder-2"
	case SlotReminder3:
		return "reminder-3"
	case SlotReminder4:
		return "reminder-4"
	case SlotWelcome:
		return "welcome"
	case SlotPaymentAck:
		return "payment-ack"
	case SlotCompletion:
		return "completion"
	}
	return ""
}

// Slot is one lit-or-unlit position in a follow-up timeline.
type Slot struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
	Lit    bool   `json:"lit"`
}

// followUpLogWire tolerates the two field names the backend uses for the
// order reference.
type followUpLogWire struct {
	Order      FlexString `json:"order"`
	OrderID    FlexString `json:"order_id"`
	CustomerID FlexString `json:"customer"`
	Event      string     `json:"event"`
	EventType  string     `json:"type"`
	Success    TruthyFlag `json:"status"`
	CreatedAt  string     `json:"created_at"`
	Note       string     `json:"note"`
}

func (l *FollowUpLog) UnmarshalJSON(data []byte) error {
	var w followUpLogWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	l.OrderID = w.OrderID
	if l.OrderID == "" {
		l.OrderID = w.Order
	}
	l.CustomerID = w.CustomerID
	l.Event = w.Event
	if l.Event == "" {
		l.Event = w.EventType
	}
	l.Success = w.Success
	l.CreatedAt = w.CreatedAt
	l.Note = w.Note
	return nil
}
