// Package token issues and verifies the stateless bearer tokens shared by
// every backend service. Tokens are HS256-signed and carry only the subject
// id, role and validity window, so each service can verify them with the
// shared secret and no session store.
//
// Known limitation: there is no revocation list. A compromised or
// deactivated account's token stays verifiable until it expires; the
// authentication middleware blocks such accounts by rechecking approval and
// active status against the identity store on every request.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hrms-platform/internal/models"
)

var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

// Claims are the verified contents of a bearer token
type Claims struct {
	UserID    uuid.UUID
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies bearer tokens with a server-held secret
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service with the given signing secret and TTL
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// NewServiceWithClock creates a token service with an injected clock for tests
func NewServiceWithClock(secret string, ttl time.Duration, now func() time.Time) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Issue creates a signed token for the given subject and role
func (s *Service) Issue(userID uuid.UUID, role models.Role) (string, error) {
	issuedAt := s.now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and validity window of a raw token and returns
// its claims. Failures map to exactly one of ErrExpired, ErrInvalidSignature
// or ErrMalformed; callers translate all three to 401.
func (s *Service) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrMalformed
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, ErrMalformed
	}

	out := &Claims{UserID: userID, Role: role}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
