package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/YassineKADER/Drawniness-Iot-Project/internal/auth"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/services"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/store"
)

// AuthHandler provides registration, token exchange and identity endpoints.
type AuthHandler struct {
	users    *services.UserService
	creds    *auth.Service
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users *services.UserService, creds *auth.Service, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		creds:    creds,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// AuthRouter registers the credential routes on the given router. The paths
// match the edge client's contract.
func AuthRouter(r chi.Router, users *services.UserService, creds *auth.Service, tokenTTL time.Duration, logger *zap.Logger) {
	handler := NewAuthHandler(users, creds, tokenTTL, logger)

	r.Post("/register", handler.Register)
	r.Post("/token", handler.Token)
	r.With(RequireAuth(creds)).Get("/me", handler.Me)
}

// RequireAuth enforces bearer authentication and injects the token subject
// into the request context as the acting user id.
func RequireAuth(creds *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			subject, err := creds.ValidateToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Register creates a new driver account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	userID, err := h.users.Register(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "missing required fields")
		case errors.Is(err, store.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, store.ErrUnavailable):
			h.logger.Error("register failed, storage unavailable", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		default:
			h.logger.Error("register failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{Status: "success", UserID: userID})
}

// Token exchanges email/password credentials for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	summary, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// Fail closed: a lookup failure is indistinguishable from bad
		// credentials to the caller. Full detail stays in the logs.
		h.logger.Error("authentication lookup failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, "incorrect email or password")
		return
	}
	if summary == nil {
		writeError(w, http.StatusBadRequest, "incorrect email or password")
		return
	}

	token, err := h.creds.IssueToken(summary.UserID, h.tokenTTL)
	if err != nil {
		h.logger.Error("token issuance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated user's summary.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
