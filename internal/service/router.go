package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

const (
	paidAtLayout   = "02-01-2006 15:04:05"
	confirmLockTTL = 30 * time.Second
)

// gatewayEndpoints maps a persisted payment-method hint to the bridge
// endpoint that serves it. Any hint not listed here routes to the manual
// channel. The generic "midtrans" hint rides the VA endpoint.
var gatewayEndpoints = map[string]string{
	models.MethodEwallet: models.MethodEwallet,
	models.MethodCard:    models.MethodCard,
	models.MethodVA:      models.MethodVA,
	"midtrans":           models.MethodVA,
}

// ConfirmInput carries everything the UI collected for a confirmation
// attempt.
type ConfirmInput struct {
	PayerName  string
	PayerEmail string
	Amount     string // possibly decorated, e.g. "Rp 500.000"
	Proof      *models.ProofFile
	PaidAt     time.Time
}

type gatewayCharger interface {
	Charge(ctx context.Context, method string, req *models.GatewayRequest) (*models.GatewayResponse, error)
}

type proofUploader interface {
	UploadProof(ctx context.Context, req *models.ManualRequest) (*models.APIResult, error)
}

// sessionStore is the slice of the order cache the router needs.
type sessionStore interface {
	PutGatewaySession(ctx context.Context, session string, gw *models.GatewaySession) error
	AcquireConfirmLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseConfirmLock(ctx context.Context, orderID string) error
}

// PaymentRouter selects the confirmation channel for an order and drives
// the chosen flow. A failed gateway attempt always leaves the customer a
// manual path forward.
type PaymentRouter struct {
	gateway gatewayCharger
	orders  proofUploader
	cache   sessionStore
}

func NewPaymentRouter(gateway gatewayCharger, orders proofUploader, orderCache sessionStore) *PaymentRouter {
	return &PaymentRouter{
		gateway: gateway,
		orders:  orders,
		cache:   orderCache,
	}
}

// Route builds the channel-specific request. Construction is fully
// synchronous and validated; no partial request ever reaches the wire.
func (r *PaymentRouter) Route(order *models.Order, channelHint string, in ConfirmInput) (*models.ChannelDecision, error) {
	amount := models.DigitsOf(in.Amount)
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}

	endpoint, isGateway := gatewayEndpoints[strings.ToLower(strings.TrimSpace(channelHint))]
	if isGateway {
		if strings.TrimSpace(in.PayerName) == "" || strings.TrimSpace(in.PayerEmail) == "" {
			return nil, &ValidationError{Field: "payer", Reason: "name and email are required for gateway payment"}
		}
		return &models.ChannelDecision{
			Channel:  models.ChannelGateway,
			Endpoint: endpoint,
			Gateway: &models.GatewayRequest{
				Name:        in.PayerName,
				Email:       in.PayerEmail,
				Amount:      amount,
				ProductName: order.ProductName,
				OrderID:     string(order.ID),
			},
		}, nil
	}

	if in.Proof == nil || len(in.Proof.Content) == 0 {
		return nil, &ValidationError{Field: "bukti_pembayaran", Reason: "proof file is required for manual payment"}
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &models.ChannelDecision{
		Channel: models.ChannelManual,
		Manual: &models.ManualRequest{
			OrderID:     string(order.ID),
			Proof:       in.Proof,
			PaidAt:      paidAt.Format(paidAtLayout),
			MethodLabel: methodLabel(channelHint),
			Amount:      amount,
		},
	}, nil
}

// Confirm executes a built decision. Gateway outcomes that cannot hand
// the customer a redirect fall back to a manual-flow state instead of
// failing terminally.
func (r *PaymentRouter) Confirm(ctx context.Context, session string, decision *models.ChannelDecision) (*models.ChannelOutcome, error) {
	switch decision.Channel {
	case models.ChannelGateway:
		return r.confirmGateway(ctx, session, decision)
	case models.ChannelManual:
		return r.confirmManual(ctx, decision)
	}
	return nil, &ValidationError{Field: "channel", Reason: "unknown channel"}
}

func (r *PaymentRouter) confirmGateway(ctx context.Context, session string, decision *models.ChannelDecision) (*models.ChannelOutcome, error) {
	resp, err := r.gateway.Charge(ctx, decision.Endpoint, decision.Gateway)
	if err != nil {
		// Network failure gets the same treatment as an explicit
		// failure response: re-route to manual.
		telemetry.Logger.Warn("Gateway charge failed, falling back to manual",
			zap.String("order_id", decision.Gateway.OrderID),
			zap.Error(err),
		)
		telemetry.ChannelFallbacks.Inc()
		return &models.ChannelOutcome{
			Channel:          models.ChannelGateway,
			FallbackToManual: true,
			Message:          "payment gateway unavailable, continue with manual transfer",
		}, nil
	}

	if !resp.Success || resp.RedirectURL == "" {
		telemetry.Logger.Warn("Gateway declined charge, falling back to manual",
			zap.String("order_id", decision.Gateway.OrderID),
			zap.String("message", resp.Message),
		)
		telemetry.ChannelFallbacks.Inc()
		return &models.ChannelOutcome{
			Channel:          models.ChannelGateway,
			FallbackToManual: true,
			Message:          resp.Message,
		}, nil
	}

	gw := &models.GatewaySession{
		OrderID:     firstNonEmpty(resp.OrderID, decision.Gateway.OrderID),
		SnapToken:   resp.SnapToken,
		RedirectURL: resp.RedirectURL,
		Method:      decision.Endpoint,
		CreatedAt:   time.Now(),
	}
	if err := r.cache.PutGatewaySession(ctx, session, gw); err != nil {
		return nil, err
	}

	telemetry.Logger.Info("Gateway redirect issued",
		zap.String("order_id", gw.OrderID),
		zap.String("method", gw.Method),
	)
	return &models.ChannelOutcome{
		Channel:     models.ChannelGateway,
		Success:     true,
		RedirectURL: resp.RedirectURL,
	}, nil
}

func (r *PaymentRouter) confirmManual(ctx context.Context, decision *models.ChannelDecision) (*models.ChannelOutcome, error) {
	locked, err := r.cache.AcquireConfirmLock(ctx, decision.Manual.OrderID, confirmLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, &ChannelError{
			Channel: string(models.ChannelManual),
			Message: "a submission for this order is already in flight",
		}
	}
	defer r.cache.ReleaseConfirmLock(ctx, decision.Manual.OrderID)

	result, err := r.orders.UploadProof(ctx, decision.Manual)
	if err != nil {
		return nil, err
	}

	telemetry.Logger.Info("Manual proof submitted",
		zap.String("order_id", decision.Manual.OrderID),
		zap.Bool("accepted", result.Success),
	)
	return &models.ChannelOutcome{
		Channel: models.ChannelManual,
		Success: result.Success,
		Message: result.Message,
	}, nil
}

func methodLabel(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "transfer"
	}
	return hint
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
