package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 15 * time.Minute

// ErrInvalidToken is returned for tokens that fail signature, format or
// expiry checks. Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Service hashes and verifies passwords and issues time-boxed HS256 bearer
// tokens. One instance holds the process-wide signing secret.
type Service struct {
	secret []byte
	cost   int
}

// New constructs a credential service. An empty signing secret is a fatal
// configuration error: the process must refuse to start rather than fall
// back to an insecure default.
func New(secret string) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	return &Service{
		secret: []byte(secret),
		cost:   bcrypt.DefaultCost,
	}, nil
}

// HashPassword produces a salted one-way bcrypt hash.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored hash. It returns
// false on any mismatch or malformed hash and never errors outward.
func (s *Service) VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// IssueToken signs a claim set {sub, iat, exp} with expiry now + ttl.
// A non-positive ttl falls back to 15 minutes.
func (s *Service) IssueToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies signature method, signature and expiry, and returns
// the subject claim.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
