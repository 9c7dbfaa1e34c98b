package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/edumart/order-reconciler/internal/models"
)

func TestNormalizeOmitsEmptyDimensions(t *testing.T) {
	filter := Normalize(UIFilterState{
		Products:      []int64{},
		OrderStatus:   "",
		PaymentStatus: "2",
	})

	payload, err := json.Marshal(filter)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(payload, &keys); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := keys["produk"]; ok {
		t.Error("empty produk dimension was sent")
	}
	if _, ok := keys["status_order"]; ok {
		t.Error("empty status_order dimension was sent")
	}
	if string(keys["status_pembayaran"]) != `"2"` {
		t.Errorf("status_pembayaran = %s, want \"2\"", keys["status_pembayaran"])
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	filter := Normalize(UIFilterState{OrderStatus: "  ", Label: " prospek "})
	if filter.OrderStatus != "" {
		t.Errorf("OrderStatus = %q, want empty", filter.OrderStatus)
	}
	if filter.Label != "prospek" {
		t.Errorf("Label = %q, want prospek", filter.Label)
	}
}

func TestDescribeZeroMatch(t *testing.T) {
	lookup := func(id int64) string {
		if id == 3 {
			return "Kelas Ekspor"
		}
		return ""
	}

	desc := DescribeZeroMatch(models.BroadcastFilter{
		Products:      []int64{3, 9},
		PaymentStatus: "2",
		AgentID:       "agent-1",
	}, lookup)

	for _, want := range []string{"Kelas Ekspor", "#9", "payment status 2", "agent agent-1"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description %q missing %q", desc, want)
		}
	}

	empty := DescribeZeroMatch(models.BroadcastFilter{}, nil)
	if !strings.Contains(empty, "customer list is empty") {
		t.Errorf("empty-filter description = %q", empty)
	}
}

type fakeSender struct {
	total   int
	lastReq *models.BroadcastRequest
}

func (f *fakeSender) Send(_ context.Context, req *models.BroadcastRequest) (*models.BroadcastResponse, error) {
	f.lastReq = req
	resp := &models.BroadcastResponse{Success: true}
	resp.Data.TotalTarget = f.total
	return resp, nil
}

func TestDispatchZeroMatchIsWarningNotError(t *testing.T) {
	sender := &fakeSender{total: 0}
	builder := NewBroadcastTargetBuilder(sender)

	result, err := builder.Dispatch(context.Background(), "halo", UIFilterState{PaymentStatus: "2"}, time.Time{}, nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !result.ZeroMatch {
		t.Error("zero-target dispatch not flagged")
	}
	if result.Description == "" {
		t.Error("zero-match description missing")
	}
	if !sender.lastReq.SendNow {
		t.Error("immediate dispatch should set langsung_kirim")
	}
}

func TestDispatchScheduled(t *testing.T) {
	sender := &fakeSender{total: 12}
	builder := NewBroadcastTargetBuilder(sender)

	sendAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	result, err := builder.Dispatch(context.Background(), "halo", UIFilterState{}, sendAt, nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.ZeroMatch {
		t.Error("non-zero target flagged as zero match")
	}
	if sender.lastReq.SendNow {
		t.Error("scheduled dispatch should not set langsung_kirim")
	}
	if sender.lastReq.SendAt != "01-03-2026 09:00:00" {
		t.Errorf("tanggal_kirim = %q", sender.lastReq.SendAt)
	}
}

func TestDispatchEmptyMessageRejected(t *testing.T) {
	builder := NewBroadcastTargetBuilder(&fakeSender{})
	_, err := builder.Dispatch(context.Background(), "  ", UIFilterState{}, time.Time{}, nil)
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
