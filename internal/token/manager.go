// ABOUTME: Token manager that mints and validates opaque session tokens
// ABOUTME: Issues unique store-backed ids after timing-safe authentication, expires lazily

package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/openexec/authgate/internal/auth"
	"github.com/openexec/authgate/internal/tokenstore"
)

// Token is a session credential standing in for re-authentication.
type Token struct {
	// Token is the opaque identifier callers present on later requests.
	Token string
	// Name is the authenticated principal bound to this token.
	Name string
	// Backend is the mechanism that produced it.
	Backend string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager issues and validates opaque tokens backed by a persistent store.
type Manager struct {
	auth   *auth.Authenticator
	store  tokenstore.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewManager creates a Manager issuing tokens with the given TTL.
func NewManager(a *auth.Authenticator, store tokenstore.Store, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		auth:   a,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "token"),
	}
}

// Issue authenticates the request and, on success, persists and returns a new
// token. A failed authentication returns (nil, nil): the caller learns
// nothing beyond "no token". A storage fault returns an error; the token was
// not created and the attempt is not retried here.
func (m *Manager) Issue(ctx context.Context, req auth.Request) (*Token, error) {
	identity, ok := m.auth.Authenticate(ctx, req)
	if !ok {
		return nil, nil
	}

	// The identity is the first required parameter of the backend's
	// signature; fall back to what the backend returned if the parameter
	// map doesn't carry it.
	name := m.auth.LoadName(req)
	if name == "" {
		name = identity
	}

	id, err := m.uniqueID(ctx)
	if err != nil {
		m.logger.Error("token not created", "backend", req.Backend, "error", err)
		return nil, err
	}

	now := time.Now()
	rec := tokenstore.Record{
		Start:  now.Unix(),
		Expire: now.Add(m.ttl).Unix(),
		Name:   name,
		Eauth:  req.Backend,
		Token:  id,
	}
	if err := m.store.Put(ctx, rec); err != nil {
		m.logger.Error("token not created", "backend", req.Backend, "error", err)
		return nil, fmt.Errorf("persisting token: %w", err)
	}

	m.logger.Info("token issued", "name", name, "backend", req.Backend,
		"expires_at", time.Unix(rec.Expire, 0))
	return recordToToken(rec), nil
}

// Lookup returns the token for id, or nil when it does not exist, has
// expired, or is missing its expiry. Expired and malformed records are
// purged best-effort; a failed purge is swallowed. All lookup failures
// collapse to nil by design, so callers cannot probe the store's state.
func (m *Manager) Lookup(ctx context.Context, id string) *Token {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotFound) && !errors.Is(err, tokenstore.ErrBadTokenID) {
			m.logger.Error("token lookup failed", "error", err)
		}
		return nil
	}

	if rec.Expire == 0 || rec.Expire < time.Now().Unix() {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn("purging expired token failed", "error", err)
		}
		return nil
	}

	return recordToToken(rec)
}

// uniqueID generates token ids until one is not present in the store. The id
// space is large enough that the loop is the correctness mechanism for
// concurrent issuance; no global lock is taken.
func (m *Manager) uniqueID(ctx context.Context) (string, error) {
	for {
		id, err := newTokenID()
		if err != nil {
			return "", err
		}
		exists, err := m.store.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("checking token collision: %w", err)
		}
		if !exists {
			return id, nil
		}
		m.logger.Warn("token id collision, regenerating")
	}
}

// newTokenID digests 512 bytes of CSPRNG output down to a fixed-length
// identifier.
func newTokenID() (string, error) {
	buf := make([]byte, 512)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	sum := sha3.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

func recordToToken(rec tokenstore.Record) *Token {
	return &Token{
		Token:     rec.Token,
		Name:      rec.Name,
		Backend:   rec.Eauth,
		IssuedAt:  time.Unix(rec.Start, 0),
		ExpiresAt: time.Unix(rec.Expire, 0),
	}
}
