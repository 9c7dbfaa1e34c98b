package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/edumart/order-reconciler/internal/models"
)

// OrdersClient talks to the order/payment REST API.
type OrdersClient struct {
	httpClient
}

func NewOrdersClient(base string, timeout time.Duration) *OrdersClient {
	return &OrdersClient{httpClient: newHTTPClient(base, timeout)}
}

// OpenOrders fetches the customer's current order list. The endpoint is
// read-only and safe to call on every page mount.
func (c *OrdersClient) OpenOrders(ctx context.Context, customerToken string) ([]models.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/customers/%s/orders", c.base, customerToken), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("orders api: status %d", resp.StatusCode)
	}

	items, err := normalizeList(body)
	if err != nil {
		return nil, fmt.Errorf("decode order list: %w", err)
	}

	orders := make([]models.Order, 0, len(items))
	for _, item := range items {
		var order models.Order
		if err := json.Unmarshal(item, &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UploadProof submits a manual proof-of-payment as multipart form data.
func (c *OrdersClient) UploadProof(ctx context.Context, req *models.ManualRequest) (*models.APIResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("bukti_pembayaran", req.Proof.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Proof.Content); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"waktu_pembayaran":  req.PaidAt,
		"metode_pembayaran": req.MethodLabel,
		"amount":            strconv.FormatInt(req.Amount, 10),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/orders/%s/payment-proof", c.base, req.OrderID), &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var result models.APIResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
