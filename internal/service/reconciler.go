package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/interfaces"
	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/status"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

type transitionWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type livePublisher interface {
	Publish(subject string, data []byte) error
}

// intentStore is the slice of the order cache the reconciler needs.
type intentStore interface {
	Get(ctx context.Context, session string) (*models.CachedOrderIntent, error)
	ReconcileAgainst(ctx context.Context, session string, serverOrder *models.Order, openOrders []models.Order) (models.ReconcileResult, error)
}

// Reconciler compares the session's cached payment intent against the
// backend's authoritative order list and resolves discrepancies. Safe to
// call on every page mount; never creates or mutates backend orders.
type Reconciler struct {
	orders      orderLister
	cache       intentStore
	audit       interfaces.StateAuditRepository
	kafkaWriter transitionWriter
	live        livePublisher

	mu       sync.Mutex
	inflight map[string]*refreshHandle
}

type refreshHandle struct {
	cancel context.CancelFunc
}

func NewReconciler(
	orders orderLister,
	orderCache intentStore,
	audit interfaces.StateAuditRepository,
	kafkaWriter transitionWriter,
	live livePublisher,
) *Reconciler {
	return &Reconciler{
		orders:      orders,
		cache:       orderCache,
		audit:       audit,
		kafkaWriter: kafkaWriter,
		live:        live,
		inflight:    make(map[string]*refreshHandle),
	}
}

// Refresh fetches the customer's open orders and reconciles the cached
// intent against them. Idempotent: with no server-side change, a second
// call leaves the cache exactly as the first did. A newer refresh for the
// same session supersedes a still-running one rather than racing it.
func (r *Reconciler) Refresh(ctx context.Context, session, customerToken string) (*models.ReconcileReport, error) {
	ctx, done := r.supersede(ctx, session)
	defer done()

	orders, err := r.orders.OpenOrders(ctx, customerToken)
	if err != nil {
		telemetry.ReconcileTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	orders = dedupeByID(orders)

	intent, err := r.cache.Get(ctx, session)
	if err != nil {
		return nil, err
	}

	report := &models.ReconcileReport{Intent: intent}

	var matched *models.Order
	if intent != nil {
		for i := range orders {
			if string(orders[i].ID) == intent.OrderID {
				matched = &orders[i]
				break
			}
		}
	}

	if matched != nil {
		report.MatchedOrder = matched
		report.DerivedState = status.Derive(matched)
		r.recordTransition(ctx, matched, report.DerivedState)
	}

	if intent != nil {
		// Fetch completed above; only now may the cache decision run.
		result, err := r.cache.ReconcileAgainst(ctx, session, matched, orders)
		if err != nil {
			return nil, err
		}
		report.CacheResult = result
	}

	telemetry.ReconcileTotal.WithLabelValues(outcomeLabel(report)).Inc()
	r.publishLive(customerToken, report)
	return report, nil
}

// supersede registers this refresh as the session's current one and
// cancels whichever call it replaces.
func (r *Reconciler) supersede(ctx context.Context, session string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	handle := &refreshHandle{cancel: cancel}

	r.mu.Lock()
	if prior, ok := r.inflight[session]; ok {
		prior.cancel()
	}
	r.inflight[session] = handle
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		if r.inflight[session] == handle {
			delete(r.inflight, session)
		}
		r.mu.Unlock()
		cancel()
	}
}

// recordTransition writes the derived state to the audit table and, on
// change, publishes a state-changed event.
func (r *Reconciler) recordTransition(ctx context.Context, order *models.Order, derived models.PaymentState) {
	if r.audit == nil {
		return
	}

	orderID := string(order.ID)
	prev, err := r.audit.CurrentState(ctx, orderID)
	if err != nil && err != sql.ErrNoRows {
		telemetry.Logger.Error("Error reading audit state",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}
	if prev == derived {
		return
	}

	if err := r.audit.RecordTransition(ctx, orderID, prev, derived); err != nil {
		telemetry.Logger.Error("Error recording state transition",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	telemetry.Logger.Info("Payment state transition",
		zap.String("order_id", orderID),
		zap.String("from_state", string(prev)),
		zap.String("to_state", string(derived)),
	)

	if r.kafkaWriter == nil {
		return
	}
	event := models.StateChangedEvent{
		OrderID:       orderID,
		State:         derived,
		PreviousState: prev,
		Timestamp:     time.Now(),
	}
	eventJSON, _ := json.Marshal(event)
	if err := r.kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: eventJSON,
	}); err != nil {
		telemetry.Logger.Error("Error publishing state change",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (r *Reconciler) publishLive(customerToken string, report *models.ReconcileReport) {
	if r.live == nil {
		return
	}
	payload, _ := json.Marshal(report)
	subject := fmt.Sprintf("orders.reconciled.%s", customerToken)
	if err := r.live.Publish(subject, payload); err != nil {
		telemetry.Logger.Warn("Error publishing live update",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// dedupeByID keeps the first occurrence of each order id.
func dedupeByID(orders []models.Order) []models.Order {
	seen := make(map[string]bool, len(orders))
	out := orders[:0]
	for _, order := range orders {
		id := string(order.ID)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, order)
	}
	return out
}

func outcomeLabel(report *models.ReconcileReport) string {
	switch {
	case report.CacheResult == models.ReconcileCleared:
		return "cleared"
	case report.Intent == nil:
		return "no_intent"
	default:
		return "kept"
	}
}
