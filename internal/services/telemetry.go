package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/YassineKADER/Drawniness-Iot-Project/types"
)

// TelemetryStore defines the write primitives the ingestion path needs.
type TelemetryStore interface {
	WriteEvent(ctx context.Context, userID, eventType string, confidence float64) (string, error)
	WriteSOS(ctx context.Context, userID, eventID, message string, latitude, longitude float64) (string, error)
}

// Notifier publishes recorded events and distress reports to an external
// channel. Implementations are best-effort; errors are logged, never
// surfaced to the reporting client.
type Notifier interface {
	PublishEvent(ctx context.Context, event types.Event) error
	PublishSOS(ctx context.Context, sos types.SOS) error
}

// TelemetryService orchestrates event and SOS ingestion: it delegates the
// referentially checked writes to the store adapter and fans successful
// writes out to the notifier.
type TelemetryService struct {
	store    TelemetryStore
	notifier Notifier
	logger   *zap.Logger
}

// NewTelemetryService constructs the service. notifier may be nil when
// notifications are disabled.
func NewTelemetryService(store TelemetryStore, notifier Notifier, logger *zap.Logger) *TelemetryService {
	return &TelemetryService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// RecordEvent appends a detection event for the user and returns the
// published record.
func (s *TelemetryService) RecordEvent(ctx context.Context, userID, eventType string, confidence float64) (types.Event, error) {
	eventID, err := s.store.WriteEvent(ctx, userID, eventType, confidence)
	if err != nil {
		return types.Event{}, err
	}

	event := types.Event{
		EventID:    eventID,
		UserID:     userID,
		EventType:  eventType,
		Confidence: confidence,
	}
	if s.notifier != nil {
		if err := s.notifier.PublishEvent(ctx, event); err != nil {
			s.logger.Warn("event notification failed",
				zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return event, nil
}

// RecordSOS appends a distress report referencing a prior event and returns
// the published record.
func (s *TelemetryService) RecordSOS(ctx context.Context, userID, eventID, message string, latitude, longitude float64) (types.SOS, error) {
	sosID, err := s.store.WriteSOS(ctx, userID, eventID, message, latitude, longitude)
	if err != nil {
		return types.SOS{}, err
	}

	sos := types.SOS{
		SOSID:     sosID,
		UserID:    userID,
		EventID:   eventID,
		Message:   message,
		Latitude:  latitude,
		Longitude: longitude,
	}
	if s.notifier != nil {
		if err := s.notifier.PublishSOS(ctx, sos); err != nil {
			s.logger.Warn("sos notification failed",
				zap.String("sos_id", sosID), zap.Error(err))
		}
	}
	return sos, nil
}
