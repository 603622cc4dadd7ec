package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/YassineKADER/Drawniness-Iot-Project/internal/store"
	"github.com/YassineKADER/Drawniness-Iot-Project/types"
)

const userIDPrefix = "driver_"

// ErrMissingFields is returned when a registration payload omits a required
// field.
var ErrMissingFields = errors.New("missing required user fields")

// UserStore defines the persistence operations the directory needs. The
// store adapter is the only implementation outside of tests.
type UserStore interface {
	CreateUser(ctx context.Context, user types.User) error
	GetUserByEmail(ctx context.Context, email string) (types.User, error)
	GetUserByID(ctx context.Context, userID string) (types.User, error)
}

// Credentials covers the password operations the directory delegates to the
// credential service.
type Credentials interface {
	HashPassword(password string) (string, error)
	VerifyPassword(plain, hashed string) bool
}

// UserService is the user directory: it registers accounts and authenticates
// login requests. It holds no direct storage handle; all persistence goes
// through the store adapter.
type UserService struct {
	store UserStore
	creds Credentials
}

func NewUserService(store UserStore, creds Credentials) *UserService {
	return &UserService{store: store, creds: creds}
}

// Register validates the required fields, hashes the password and persists a
// new user. The generated id carries the driver role prefix.
func (s *UserService) Register(ctx context.Context, name, email, phone, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if name == "" || email == "" || phone == "" || password == "" {
		return "", ErrMissingFields
	}

	hashed, err := s.creds.HashPassword(password)
	if err != nil {
		return "", err
	}

	userID := userIDPrefix + uuid.NewString()
	user := types.User{
		UserID:         userID,
		Email:          email,
		Name:           name,
		Phone:          phone,
		HashedPassword: hashed,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", err
	}
	return userID, nil
}

// Authenticate verifies credentials against the most recent record for the
// email. It returns a nil summary for an unknown email or a wrong password;
// the two cases are indistinguishable to the caller. Storage errors other
// than not-found propagate so the handler can fail closed.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*types.UserSummary, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !s.creds.VerifyPassword(password, user.HashedPassword) {
		return nil, nil
	}
	return &types.UserSummary{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}

// GetByID returns the summary for an existing user id.
func (s *UserService) GetByID(ctx context.Context, userID string) (*types.UserSummary, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &types.UserSummary{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}
