package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shankarelec/stocktrack/internal/config"
)

// Client delivers plain-text alerts to an operator-facing webhook.
type Client interface {
	SendAlert(ctx context.Context, text string) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a webhook client from configuration.
func NewWebhookClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

type alertPayload struct {
	Text string `json:"text"`
}

// SendAlert posts the alert text as a JSON payload.
func (c *WebhookClient) SendAlert(ctx context.Context, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alertPayload{Text: text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("webhook rejected alert: status %d", resp.StatusCode())
	}
	return nil
}
