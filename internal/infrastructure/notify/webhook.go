// Package notify delivers low-stock alerts outside the process.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"ricemill/internal/config"
	"ricemill/internal/domain/reports"
)

// Notifier sends a batch of low-stock alerts.
type Notifier interface {
	NotifyLowStock(ctx context.Context, alerts []reports.LowStockAlert) error
}

// New returns a webhook notifier when a URL is configured, Nop otherwise.
func New(cfg config.AlertsConfig) Notifier {
	if cfg.WebhookURL == "" {
		return Nop{}
	}
	return NewWebhook(cfg)
}

// Nop discards alerts.
type Nop struct{}

func (Nop) NotifyLowStock(context.Context, []reports.LowStockAlert) error { return nil }

// Webhook posts alerts as JSON to a fixed URL.
type Webhook struct {
	httpClient *resty.Client
	url        string
}

// NewWebhook builds a resty-backed webhook client.
func NewWebhook(cfg config.AlertsConfig) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "ricemill-alerts").
		SetTimeout(timeout)

	return &Webhook{httpClient: restyClient, url: cfg.WebhookURL}
}

// LowStockPayload is the body posted to the webhook.
type LowStockPayload struct {
	Event  string                  `json:"event"`
	SentAt time.Time               `json:"sentAt"`
	Count  int                     `json:"count"`
	Alerts []reports.LowStockAlert `json:"alerts"`
}

type webhookError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NotifyLowStock posts the alerts. An empty batch is not sent.
func (w *Webhook) NotifyLowStock(ctx context.Context, alerts []reports.LowStockAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	payload := LowStockPayload{
		Event:  "low_stock",
		SentAt: time.Now().UTC(),
		Count:  len(alerts),
		Alerts: alerts,
	}
	apiErr := new(webhookError)

	resp, err := w.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("send low stock alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("alert webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}
	return nil
}
