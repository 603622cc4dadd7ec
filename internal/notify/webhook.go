package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/YassineKADER/Drawniness-Iot-Project/config"
)

const webhookTimeout = 5 * time.Second

// WebhookBackend posts alert payloads to per-channel HTTP endpoints.
type WebhookBackend struct {
	client *resty.Client
	urls   map[string]string
}

// NewWebhookBackend constructs a webhook backend from config. At least one
// channel URL must be configured.
func NewWebhookBackend(cfg config.WebhookConfig) (*WebhookBackend, error) {
	urls := map[string]string{}
	if url := strings.TrimSpace(cfg.EventURL); url != "" {
		urls[ChannelEvents] = url
	}
	if url := strings.TrimSpace(cfg.SOSURL); url != "" {
		urls[ChannelSOS] = url
	}
	if len(urls) == 0 {
		return nil, errors.New("webhook backend requires at least one channel url")
	}

	return &WebhookBackend{
		client: resty.New().SetTimeout(webhookTimeout),
		urls:   urls,
	}, nil
}

// Publish posts the payload to the URL configured for the channel.
func (w *WebhookBackend) Publish(ctx context.Context, channel string, data []byte) (string, error) {
	url, ok := w.urls[channel]
	if !ok {
		return "", fmt.Errorf("no webhook configured for channel %q", channel)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(data).
		Post(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("webhook %s returned %s", channel, resp.Status())
	}
	return "", nil
}

// Close is a no-op; resty holds no persistent connections worth draining.
func (w *WebhookBackend) Close() error {
	return nil
}
