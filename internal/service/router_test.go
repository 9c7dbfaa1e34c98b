package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edumart/order-reconciler/internal/models"
)

type fakeGateway struct {
	resp    *models.GatewayResponse
	err     error
	lastReq *models.GatewayRequest
	method  string
}

func (f *fakeGateway) Charge(_ context.Context, method string, req *models.GatewayRequest) (*models.GatewayResponse, error) {
	f.method = method
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeUploader struct {
	result  *models.APIResult
	err     error
	lastReq *models.ManualRequest
}

func (f *fakeUploader) UploadProof(_ context.Context, req *models.ManualRequest) (*models.APIResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	gateway  map[string]*models.GatewaySession
	locks    map[string]bool
	lockErr  error
	storeErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		gateway: make(map[string]*models.GatewaySession),
		locks:   make(map[string]bool),
	}
}

func (f *fakeSessionStore) PutGatewaySession(_ context.Context, session string, gw *models.GatewaySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	f.gateway[session] = gw
	return nil
}

func (f *fakeSessionStore) AcquireConfirmLock(_ context.Context, orderID string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return false, f.lockErr
	}
	if f.locks[orderID] {
		return false, nil
	}
	f.locks[orderID] = true
	return true, nil
}

func (f *fakeSessionStore) ReleaseConfirmLock(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, orderID)
	return nil
}

func testOrder() *models.Order {
	return &models.Order{ID: "42", TotalPrice: 500000, ProductName: "Kelas Ekspor"}
}

func TestRouteGatewayHints(t *testing.T) {
	router := NewPaymentRouter(&fakeGateway{}, &fakeUploader{}, newFakeSessionStore())
	in := ConfirmInput{PayerName: "Budi", PayerEmail: "budi@example.com", Amount: "Rp 500.000"}

	tests := []struct {
		hint     string
		endpoint string
	}{
		{"ewallet", "ewallet"},
		{"EWALLET", "ewallet"},
		{"cc", "cc"},
		{"va", "va"},
		{"Midtrans", "va"},
	}

	for _, tt := range tests {
		decision, err := router.Route(testOrder(), tt.hint, in)
		require.NoError(t, err, tt.hint)
		require.Equal(t, models.ChannelGateway, decision.Channel)
		require.Equal(t, tt.endpoint, decision.Endpoint)
		require.Equal(t, int64(500000), decision.Gateway.Amount)
		require.Equal(t, "42", decision.Gateway.OrderID)
	}
}

func TestRouteManualForUnknownHint(t *testing.T) {
	router := NewPaymentRouter(&fakeGateway{}, &fakeUploader{}, newFakeSessionStore())
	in := ConfirmInput{
		Amount: "500000",
		Proof:  &models.ProofFile{Filename: "bukti.jpg", Content: []byte("x")},
		PaidAt: time.Date(2026, 2, 15, 14, 0, 0, 0, time.UTC),
	}

	for _, hint := range []string{"", "transfer", "bank_bca"} {
		decision, err := router.Route(testOrder(), hint, in)
		require.NoError(t, err, hint)
		require.Equal(t, models.ChannelManual, decision.Channel)
		require.Equal(t, "15-02-2026 14:00:00", decision.Manual.PaidAt)
	}
}

func TestRouteGuards(t *testing.T) {
	router := NewPaymentRouter(&fakeGateway{}, &fakeUploader{}, newFakeSessionStore())

	tests := []struct {
		name string
		hint string
		in   ConfirmInput
	}{
		{"gateway missing payer", "ewallet", ConfirmInput{Amount: "500000"}},
		{"gateway zero amount", "ewallet", ConfirmInput{PayerName: "Budi", PayerEmail: "b@x.id", Amount: "Rp 0"}},
		{"gateway junk amount", "cc", ConfirmInput{PayerName: "Budi", PayerEmail: "b@x.id", Amount: "gratis"}},
		{"manual missing proof", "transfer", ConfirmInput{Amount: "500000"}},
		{"manual zero amount", "transfer", ConfirmInput{Amount: "0", Proof: &models.ProofFile{Filename: "a", Content: []byte("x")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.Route(testOrder(), tt.hint, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestConfirmGatewaySuccessPersistsSession(t *testing.T) {
	gateway := &fakeGateway{resp: &models.GatewayResponse{
		Success:     true,
		RedirectURL: "https://pay.example/session/abc",
		SnapToken:   "snap-123",
		OrderID:     "GW-42",
	}}
	store := newFakeSessionStore()
	router := NewPaymentRouter(gateway, &fakeUploader{}, store)

	decision, err := router.Route(testOrder(), "ewallet", ConfirmInput{
		PayerName: "Budi", PayerEmail: "budi@example.com", Amount: "500000",
	})
	require.NoError(t, err)

	outcome, err := router.Confirm(context.Background(), "sess-1", decision)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, "https://pay.example/session/abc", outcome.RedirectURL)
	require.False(t, outcome.FallbackToManual)

	gw := store.gateway["sess-1"]
	require.NotNil(t, gw)
	require.Equal(t, "GW-42", gw.OrderID)
	require.Equal(t, "snap-123", gw.SnapToken)
}

func TestConfirmGatewayFallsBackToManual(t *testing.T) {
	tests := []struct {
		name    string
		gateway *fakeGateway
	}{
		{"explicit failure", &fakeGateway{resp: &models.GatewayResponse{Success: false, Message: "declined"}}},
		{"missing redirect", &fakeGateway{resp: &models.GatewayResponse{Success: true}}},
		{"network failure", &fakeGateway{err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeSessionStore()
			router := NewPaymentRouter(tt.gateway, &fakeUploader{}, store)

			decision, err := router.Route(testOrder(), "cc", ConfirmInput{
				PayerName: "Budi", PayerEmail: "budi@example.com", Amount: "500000",
			})
			require.NoError(t, err)

			outcome, err := router.Confirm(context.Background(), "sess-1", decision)
			require.NoError(t, err)
			require.False(t, outcome.Success)
			require.True(t, outcome.FallbackToManual)
			require.Empty(t, store.gateway)
		})
	}
}

func TestConfirmManualSingleFlight(t *testing.T) {
	uploader := &fakeUploader{result: &models.APIResult{Success: true, Message: "diterima"}}
	store := newFakeSessionStore()
	router := NewPaymentRouter(&fakeGateway{}, uploader, store)

	decision, err := router.Route(testOrder(), "transfer", ConfirmInput{
		Amount: "500000",
		Proof:  &models.ProofFile{Filename: "bukti.jpg", Content: []byte("x")},
	})
	require.NoError(t, err)

	// Simulate an in-flight submission holding the lock.
	store.locks["42"] = true
	_, err = router.Confirm(context.Background(), "sess-1", decision)
	var cherr *ChannelError
	require.ErrorAs(t, err, &cherr)

	// Once released, the submission goes through and the lock is freed.
	delete(store.locks, "42")
	outcome, err := router.Confirm(context.Background(), "sess-1", decision)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, "diterima", outcome.Message)
	require.False(t, store.locks["42"])
	require.Equal(t, int64(500000), uploader.lastReq.Amount)
}
