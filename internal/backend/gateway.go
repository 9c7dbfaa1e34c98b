package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/edumart/order-reconciler/internal/models"
)

// GatewayClient talks to the payment gateway bridge. One endpoint per
// method; the bridge owns settlement, we only observe its answer.
type GatewayClient struct {
	httpClient
}

func NewGatewayClient(base string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{httpClient: newHTTPClient(base, timeout)}
}

// Charge posts a charge request to the method-specific bridge endpoint.
func (c *GatewayClient) Charge(ctx context.Context, method string, req *models.GatewayRequest) (*models.GatewayResponse, error) {
	var resp models.GatewayResponse
	if err := c.postJSON(ctx, fmt.Sprintf("/payment/%s", method), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
