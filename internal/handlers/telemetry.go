package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/YassineKADER/Drawniness-Iot-Project/internal/services"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/store"
	"github.com/YassineKADER/Drawniness-Iot-Project/types"
)

// TelemetryHandler provides the authenticated event and SOS ingestion
// endpoints.
type TelemetryHandler struct {
	telemetry *services.TelemetryService
	logger    *zap.Logger
}

// NewTelemetryHandler constructs a handler with the provided dependencies.
func NewTelemetryHandler(telemetry *services.TelemetryService, logger *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry, logger: logger}
}

// TelemetryRouter registers the ingestion routes. The trailing slashes match
// the edge client's contract.
func TelemetryRouter(r chi.Router, telemetry *services.TelemetryService, authMiddleware func(http.Handler) http.Handler, logger *zap.Logger) {
	handler := NewTelemetryHandler(telemetry, logger)

	r.With(authMiddleware).Post("/event/", handler.PublishEvent)
	r.With(authMiddleware).Post("/sos/", handler.SendSOS)
}

// PublishEvent records a detection event for the authenticated user.
func (h *TelemetryHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.EventType) == "" {
		writeError(w, http.StatusBadRequest, "missing 'event_type'")
		return
	}

	event, err := h.telemetry.RecordEvent(r.Context(), userID, req.EventType, req.Confidence)
	if err != nil {
		h.writeStoreError(w, err, "failed to record event")
		return
	}

	writeJSON(w, http.StatusOK, EventResponse{Status: "success", PublishedEvent: event})
}

// SendSOS records a distress report referencing a previously recorded event.
func (h *TelemetryHandler) SendSOS(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SOSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.Message) == "" ||
		req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	_, err = h.telemetry.RecordSOS(r.Context(), userID, req.EventID, req.Message, *req.Latitude, *req.Longitude)
	if err != nil {
		h.writeStoreError(w, err, "failed to record sos")
		return
	}

	writeJSON(w, http.StatusOK, SOSResponse{Status: "SOS sent", Message: req.Message})
}

func (h *TelemetryHandler) writeStoreError(w http.ResponseWriter, err error, internalMsg string) {
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusBadRequest, "unknown user")
	case errors.Is(err, store.ErrEventNotFound):
		writeError(w, http.StatusBadRequest, "unknown event")
	case errors.Is(err, store.ErrUnavailable):
		h.logger.Error(internalMsg, zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		h.logger.Error(internalMsg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

type EventRequest struct {
	EventType  string  `json:"event_type"`
	Confidence float64 `json:"confidence"`
}

type EventResponse struct {
	Status         string      `json:"status"`
	PublishedEvent types.Event `json:"published_event"`
}

// SOSRequest uses pointers for the coordinates so an absent field is
// distinguishable from a zero value.
type SOSRequest struct {
	EventID   string   `json:"event_id"`
	Message   string   `json:"message"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type SOSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
