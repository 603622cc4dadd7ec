package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/YassineKADER/Drawniness-Iot-Project/internal/auth"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/services"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/store"
	"github.com/YassineKADER/Drawniness-Iot-Project/types"
)

// memoryStore is an in-memory stand-in for the store adapter with the same
// referential-integrity behavior.
type memoryStore struct {
	users  map[string]types.User // keyed by email
	events map[string]types.Event
	sos    map[string]types.SOS

	failWith error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  map[string]types.User{},
		events: map[string]types.Event{},
		sos:    map[string]types.SOS{},
	}
}

func (m *memoryStore) CreateUser(ctx context.Context, user types.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.users[user.Email]; ok {
		return store.ErrEmailTaken
	}
	m.users[user.Email] = user
	return nil
}

func (m *memoryStore) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	if m.failWith != nil {
		return types.User{}, m.failWith
	}
	user, ok := m.users[email]
	if !ok {
		return types.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (m *memoryStore) GetUserByID(ctx context.Context, userID string) (types.User, error) {
	for _, user := range m.users {
		if user.UserID == userID {
			return user, nil
		}
	}
	return types.User{}, store.ErrUserNotFound
}

func (m *memoryStore) WriteEvent(ctx context.Context, userID, eventType string, confidence float64) (string, error) {
	if m.failWith != nil {
		return "", m.failWith
	}
	if _, err := m.GetUserByID(ctx, userID); err != nil {
		return "", fmt.Errorf("user %s: %w", userID, store.ErrUserNotFound)
	}
	eventID := uuid.NewString()
	m.events[eventID] = types.Event{EventID: eventID, UserID: userID, EventType: eventType, Confidence: confidence}
	return eventID, nil
}

func (m *memoryStore) WriteSOS(ctx context.Context, userID, eventID, message string, latitude, longitude float64) (string, error) {
	if m.failWith != nil {
		return "", m.failWith
	}
	if _, err := m.GetUserByID(ctx, userID); err != nil {
		return "", fmt.Errorf("user %s: %w", userID, store.ErrUserNotFound)
	}
	if _, ok := m.events[eventID]; !ok {
		return "", fmt.Errorf("event %s: %w", eventID, store.ErrEventNotFound)
	}
	sosID := uuid.NewString()
	m.sos[sosID] = types.SOS{SOSID: sosID, UserID: userID, EventID: eventID, Message: message, Latitude: latitude, Longitude: longitude}
	return sosID, nil
}

func newTestRouter(t *testing.T, memStore *memoryStore) *chi.Mux {
	t.Helper()

	creds, err := auth.New("test-secret")
	require.NoError(t, err)

	logger := zap.NewNop()
	userService := services.NewUserService(memStore, creds)
	telemetryService := services.NewTelemetryService(memStore, nil, logger)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz(pingerFunc(func(ctx context.Context) error { return nil })))
	AuthRouter(router, userService, creds, 300*time.Minute, logger)
	TelemetryRouter(router, telemetryService, RequireAuth(creds), logger)
	return router
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())

	rec := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "phone": "1", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "success", payload["status"])
	assert.Contains(t, payload["user_id"], "driver_")
}

func TestRegisterMissingFields(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())

	rec := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"name": "A", "email": "a@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())

	body := map[string]string{"name": "A", "email": "a@x.com", "phone": "1", "password": "pw"}
	rec := doJSON(t, router, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterStorageUnavailable(t *testing.T) {
	memStore := newMemoryStore()
	memStore.failWith = store.ErrUnavailable
	router := newTestRouter(t, memStore)

	rec := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "phone": "1", "password": "pw",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTokenEndpoint(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())

	rec := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "phone": "1", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/token", "", map[string]string{
		"email": "a@x.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "bearer", payload["token_type"])
	assert.NotEmpty(t, payload["access_token"])
}

func TestTokenInvalidCredentials(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())

	rec := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "phone": "1", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Wrong password and unknown email produce the same response.
	recWrong := doJSON(t, router, http.MethodPost, "/token", "", map[string]string{
		"email": "a@x.com", "password": "nope",
	})
	recUnknown := doJSON(t, router, http.MethodPost, "/token", "", map[string]string{
		"email": "nobody@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, recWrong.Code)
	assert.Equal(t, http.StatusBadRequest, recUnknown.Code)
	assert.Equal(t, recWrong.Body.String(), recUnknown.Body.String())
}

func TestTokenFailsClosedOnStorageError(t *testing.T) {
	memStore := newMemoryStore()
	memStore.failWith = store.ErrUnavailable
	router := newTestRouter(t, memStore)

	rec := doJSON(t, router, http.MethodPost, "/token", "", map[string]string{
		"email": "a@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventRequiresAuth(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())

	rec := doJSON(t, router, http.MethodPost, "/event/", "", map[string]any{
		"event_type": "drowsy", "confidence": 0.9,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/event/", "not-a-token", map[string]any{
		"event_type": "drowsy", "confidence": 0.9,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventRejectsForeignToken(t *testing.T) {
	memStore := newMemoryStore()
	router := newTestRouter(t, memStore)

	// Issued by a different secret, so validation fails.
	otherCreds, err := auth.New("other-secret")
	require.NoError(t, err)
	token, err := otherCreds.IssueToken("driver_1", time.Minute)
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/event/", token, map[string]any{
		"event_type": "drowsy", "confidence": 0.9,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func registerAndLogin(t *testing.T, router http.Handler) (userID, token string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "phone": "1", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	userID = decodeBody(t, rec)["user_id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/token", "", map[string]string{
		"email": "a@x.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token = decodeBody(t, rec)["access_token"].(string)
	return userID, token
}

func TestEndToEndFlow(t *testing.T) {
	memStore := newMemoryStore()
	router := newTestRouter(t, memStore)

	userID, token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/event/", token, map[string]any{
		"event_type": "drowsy", "confidence": 0.9,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "success", payload["status"])
	published := payload["published_event"].(map[string]any)
	assert.Equal(t, userID, published["user_id"])
	assert.Equal(t, "drowsy", published["event_type"])
	assert.Equal(t, 0.9, published["confidence"])
	eventID := published["event_id"].(string)
	assert.NotEmpty(t, eventID)

	rec = doJSON(t, router, http.MethodPost, "/sos/", token, map[string]any{
		"event_id": eventID, "message": "help", "latitude": 34.05, "longitude": -118.24,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload = decodeBody(t, rec)
	assert.Equal(t, "SOS sent", payload["status"])
	assert.Equal(t, "help", payload["message"])
	require.Len(t, memStore.sos, 1)
}

func TestEventMissingType(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())
	_, token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/event/", token, map[string]any{
		"confidence": 0.9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSOSFabricatedEventID(t *testing.T) {
	memStore := newMemoryStore()
	router := newTestRouter(t, memStore)
	_, token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/sos/", token, map[string]any{
		"event_id": uuid.NewString(), "message": "help", "latitude": 34.05, "longitude": -118.24,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown event")
	assert.Empty(t, memStore.sos)
}

func TestSOSMissingFields(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())
	_, token := registerAndLogin(t, router)

	cases := []map[string]any{
		{"message": "help", "latitude": 34.05, "longitude": -118.24},
		{"event_id": "e", "latitude": 34.05, "longitude": -118.24},
		{"event_id": "e", "message": "help", "longitude": -118.24},
		{"event_id": "e", "message": "help", "latitude": 34.05},
	}
	for _, body := range cases {
		rec := doJSON(t, router, http.MethodPost, "/sos/", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestSOSStorageUnavailable(t *testing.T) {
	memStore := newMemoryStore()
	router := newTestRouter(t, memStore)
	_, token := registerAndLogin(t, router)

	memStore.failWith = store.ErrUnavailable
	rec := doJSON(t, router, http.MethodPost, "/sos/", token, map[string]any{
		"event_id": "e", "message": "help", "latitude": 34.05, "longitude": -118.24,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMeEndpoint(t *testing.T) {
	router := newTestRouter(t, newMemoryStore())
	userID, token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, userID, payload["user_id"])
	assert.Equal(t, "a@x.com", payload["email"])

	rec = doJSON(t, router, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	healthy := Healthz(pingerFunc(func(ctx context.Context) error { return nil }))
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := Healthz(pingerFunc(func(ctx context.Context) error { return store.ErrUnavailable }))
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
