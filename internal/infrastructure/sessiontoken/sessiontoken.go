// Package sessiontoken issues and validates the service's own signed
// session tokens, presented under the SocialPlus scheme once a caller
// has registered through an external identity provider.
package sessiontoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the verified content of a session token.
type Session struct {
	AppHandle  string
	UserHandle string
}

// Service signs and validates session tokens with an HMAC secret.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewService constructs a session-token service.
func NewService(secret []byte, issuer string, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("session token secret is required")
	}
	return &Service{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token binding a user handle to an app handle.
func (s *Service) Issue(appHandle, userHandle string) (string, error) {
	if appHandle == "" || userHandle == "" {
		return "", errors.New("app handle and user handle are required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   userHandle,
		Audience:  jwt.ClaimStrings{appHandle},
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning the session
// identity it carries.
func (s *Service) Validate(rawToken string) (*Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)

	var claims jwt.RegisteredClaims
	token, err := parser.ParseWithClaims(rawToken, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	if claims.Subject == "" {
		return nil, errors.New("session token missing subject")
	}
	if len(claims.Audience) != 1 || claims.Audience[0] == "" {
		return nil, errors.New("session token missing app audience")
	}

	return &Session{
		AppHandle:  claims.Audience[0],
		UserHandle: claims.Subject,
	}, nil
}
