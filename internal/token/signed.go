// ABOUTME: Stateless signed-token mode using HS256 JWTs
// ABOUTME: Same issue/lookup surface as the opaque manager, no store entry

package token

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openexec/authgate/internal/auth"
)

// SignedManager issues HS256-signed tokens carrying the identity and backend
// as claims. Lookups validate the signature and expiry without touching any
// store, which suits deployments where gateway replicas share no storage.
// The trade-off is that signed tokens cannot be revoked before expiry.
type SignedManager struct {
	auth   *auth.Authenticator
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewSignedManager creates a SignedManager signing with the given secret.
func NewSignedManager(a *auth.Authenticator, secret []byte, ttl time.Duration, logger *slog.Logger) *SignedManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignedManager{
		auth:   a,
		secret: secret,
		ttl:    ttl,
		logger: logger.With("component", "token"),
	}
}

// Issue authenticates the request and mints a signed token. Failed
// authentication returns (nil, nil), matching the opaque manager.
func (m *SignedManager) Issue(ctx context.Context, req auth.Request) (*Token, error) {
	identity, ok := m.auth.Authenticate(ctx, req)
	if !ok {
		return nil, nil
	}

	name := m.auth.LoadName(req)
	if name == "" {
		name = identity
	}

	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub":   name,
		"eauth": req.Backend,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		m.logger.Error("token not created", "backend", req.Backend, "error", err)
		return nil, err
	}

	m.logger.Info("signed token issued", "name", name, "backend", req.Backend,
		"expires_at", expiresAt)
	return &Token{
		Token:     signed,
		Name:      name,
		Backend:   req.Backend,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Lookup validates a signed token and reconstructs the Token from its
// claims. Invalid, expired, or foreign-signed tokens return nil.
func (m *SignedManager) Lookup(_ context.Context, tokenString string) *Token {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, _ := claims["sub"].(string)
	eauth, _ := claims["eauth"].(string)
	if sub == "" {
		return nil
	}

	tok := &Token{Token: tokenString, Name: sub, Backend: eauth}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		tok.IssuedAt = iat.Time
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No expiry claim: treated like a record missing its expire field.
		return nil
	}
	tok.ExpiresAt = exp.Time
	return tok
}
