package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YassineKADER/Drawniness-Iot-Project/config"
	"github.com/YassineKADER/Drawniness-Iot-Project/types"
)

// Channels for outbound alerts.
const (
	ChannelEvents = "driver.events"
	ChannelSOS    = "driver.sos"
)

// Backend is a transport-agnostic publisher for outbound alerts.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte) (string, error)
	Close() error
}

// Notifier wraps a backend with a stable API over the domain types.
type Notifier struct {
	backend Backend
}

// New constructs a Notifier for the provided backend.
func New(backend Backend) *Notifier {
	return &Notifier{backend: backend}
}

// FromConfig builds the configured notifier, or nil when notifications are
// disabled.
func FromConfig(ctx context.Context, cfg config.NotifyConfig) (*Notifier, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "pubsub":
		backend, err := NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "webhook":
		backend, err := NewWebhookBackend(cfg.Webhook)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}

// PublishEvent sends a recorded detection event to the events channel.
func (n *Notifier) PublishEvent(ctx context.Context, event types.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = n.backend.Publish(ctx, ChannelEvents, data)
	return err
}

// PublishSOS sends a recorded distress report to the sos channel.
func (n *Notifier) PublishSOS(ctx context.Context, sos types.SOS) error {
	data, err := json.Marshal(sos)
	if err != nil {
		return err
	}
	_, err = n.backend.Publish(ctx, ChannelSOS, data)
	return err
}

// Close closes the underlying backend.
func (n *Notifier) Close() error {
	return n.backend.Close()
}
