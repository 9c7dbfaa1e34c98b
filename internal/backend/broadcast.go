package backend

import (
	"context"
	"time"

	"github.com/edumart/order-reconciler/internal/models"
)

// BroadcastClient dispatches follow-up broadcasts through the messaging
// backend.
type BroadcastClient struct {
	httpClient
}

func NewBroadcastClient(base string, timeout time.Duration) *BroadcastClient {
	return &BroadcastClient{httpClient: newHTTPClient(base, timeout)}
}

func (c *BroadcastClient) Send(ctx context.Context, req *models.BroadcastRequest) (*models.BroadcastResponse, error) {
	var resp models.BroadcastResponse
	if err := c.postJSON(ctx, "/broadcasts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
