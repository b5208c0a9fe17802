// Package auth holds the credential primitives of the server: password
// hashing, access token issuing and validation, and the gate that turns an
// Authorization header into an authenticated user.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token failure kinds. All of them wrap common.ErrInvalidToken.
var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", common.ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: bad signature", common.ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", common.ErrInvalidToken)
	ErrTokenInvalid   = fmt.Errorf("%w: invalid claims", common.ErrInvalidToken)
)

// TokenService issues and validates signed, expiring access tokens whose
// subject is a user id. It is immutable once built and safe for concurrent
// use.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with the given HMAC
// algorithm (HS256, HS384 or HS512).
func NewTokenService(secret []byte, algorithm string, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &TokenService{secret: secret, method: method, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue mints a token for the user id, expiring after the configured lifetime.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(s.method, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of token and returns its
// subject id. Errors are one of ErrTokenMalformed, ErrTokenSignature,
// ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) Validate(token string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return 0, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		default:
			return 0, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrTokenInvalid, claims.Subject)
	}
	return id, nil
}
