package interfaces

import (
	"context"

	"github.com/edumart/order-reconciler/internal/models"
)

// StateAuditRepository defines the contract for the derived-state audit
// trail.
type StateAuditRepository interface {
	InitDB() error
	CurrentState(ctx context.Context, orderID string) (models.PaymentState, error)
	RecordTransition(ctx context.Context, orderID string, from, to models.PaymentState) error
	GetByOrderID(ctx context.Context, orderID string) (*models.StateAuditInfo, error)
}
