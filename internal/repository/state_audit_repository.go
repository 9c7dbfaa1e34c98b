package repository

import (
	"context"
	"database/sql"

	"github.com/edumart/order-reconciler/internal/models"
)

// StateAuditRepository stores the last derived payment state observed for
// each order. The backend remains the source of truth for orders; this
// table only records what reconciliation saw, so state changes can be
// detected and published.
type StateAuditRepository struct {
	db *sql.DB
}

func NewStateAuditRepository(db *sql.DB) *StateAuditRepository {
	return &StateAuditRepository{db: db}
}

func (r *StateAuditRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS order_payment_states (
			order_id VARCHAR(255) PRIMARY KEY,
			state VARCHAR(50) NOT NULL,
			previous_state VARCHAR(50),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_payment_states_state ON order_payment_states(state)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// CurrentState returns the last recorded state for an order, or the empty
// state when the order has never been reconciled.
func (r *StateAuditRepository) CurrentState(ctx context.Context, orderID string) (models.PaymentState, error) {
	var state string
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM order_payment_states WHERE order_id = $1`, orderID).Scan(&state)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return models.PaymentState(state), nil
}

func (r *StateAuditRepository) RecordTransition(ctx context.Context, orderID string, from, to models.PaymentState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_payment_states (order_id, state, previous_state)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE
		SET state = $2, previous_state = $3, updated_at = NOW()
	`, orderID, to, from)
	return err
}

func (r *StateAuditRepository) GetByOrderID(ctx context.Context, orderID string) (*models.StateAuditInfo, error) {
	var info models.StateAuditInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, state, previous_state, created_at, updated_at
		FROM order_payment_states WHERE order_id = $1
	`, orderID).Scan(&info.OrderID, &info.State, &info.PreviousState, &info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
