package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edumart/order-reconciler/internal/models"
)

// FollowUpClient reads and appends the follow-up log stream.
type FollowUpClient struct {
	httpClient
}

func NewFollowUpClient(base string, timeout time.Duration) *FollowUpClient {
	return &FollowUpClient{httpClient: newHTTPClient(base, timeout)}
}

// Logs returns every follow-up log entry recorded for a customer.
func (c *FollowUpClient) Logs(ctx context.Context, customerID string) ([]models.FollowUpLog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/customers/%s/followups", c.base, customerID), nil)
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
		return nil, fmt.Errorf("followup api: status %d", resp.StatusCode)
	}

	items, err := normalizeList(body)
	if err != nil {
		return nil, fmt.Errorf("decode followup list: %w", err)
	}

	logs := make([]models.FollowUpLog, 0, len(items))
	for _, item := range items {
		var entry models.FollowUpLog
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// Append records a new follow-up log entry. The stream is append-only;
// nothing here mutates or deletes existing rows.
func (c *FollowUpClient) Append(ctx context.Context, entry *models.FollowUpLog) (*models.APIResult, error) {
	var result models.APIResult
	if err := c.postJSON(ctx, "/followups", entry, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
