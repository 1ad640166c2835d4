// Package webhook delivers cost-change notifications to an external HTTP
// endpoint.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/prepflow/backoffice/internal/domain/models"
)

// Notifier posts cost-change events to a configured URL.
type Notifier interface {
	NotifyCostChange(ctx context.Context, ev models.CostChanged) error
}

// Client is a resty-backed implementation of Notifier.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client for the given endpoint URL.
func NewClient(url string) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{
		httpClient: restyClient,
		url:        url,
	}
}

type costChangePayload struct {
	Event        string  `json:"event"`
	OwnerID      string  `json:"ownerId"`
	RawGoodID    string  `json:"rawGoodId"`
	Name         string  `json:"name"`
	PreviousCost float64 `json:"previousCost"`
	NewCost      float64 `json:"newCost"`
	OccurredAt   string  `json:"occurredAt"`
}

// NotifyCostChange posts the event. A non-2xx response is an error.
func (c *Client) NotifyCostChange(ctx context.Context, ev models.CostChanged) error {
	payload := costChangePayload{
		Event:        "raw_good.cost_changed",
		OwnerID:      ev.OwnerID,
		RawGoodID:    ev.RawGoodID,
		Name:         ev.Name,
		PreviousCost: ev.PreviousCost,
		NewCost:      ev.NewCost,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send cost change webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("cost change webhook rejected: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}
