// ABOUTME: Session state: bearer token plus cached user profile, persisted through storage
// ABOUTME: Init hydrates the token at startup and Clear tears everything down

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/storage"
)

// ErrNoToken is returned by Claims when no token is held.
var ErrNoToken = errors.New("no token")

// Session is the client's authenticated identity.
type Session struct {
	store  storage.Storage
	logger *slog.Logger

	mu    sync.RWMutex
	token string
	user  *api.User
}

// New returns an empty Session backed by store. Call Init to load a persisted token.
func New(store storage.Storage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:  store,
		logger: logger.With("component", "session"),
	}
}

// Init loads the persisted token, if any. The user stays empty until fetched.
func (s *Session) Init(ctx context.Context) error {
	tok, ok, err := s.store.Get(ctx, storage.KeyToken)
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.token = tok
	} else {
		s.token = ""
	}
	s.user = nil
	s.logger.Debug("session initialized", "authenticated", s.token != "")
	return nil
}

// Token returns the current bearer token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached profile, or nil.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// SetToken persists tok, then holds it in memory. An empty tok clears the session.
// A token that could not be persisted is not held.
func (s *Session) SetToken(ctx context.Context, tok string) error {
	if tok == "" {
		return s.Clear(ctx)
	}
	if err := s.store.Set(ctx, storage.KeyToken, tok); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	return nil
}

func (s *Session) setUser(u *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// Clear drops the token and user and removes the persisted token.
// It is idempotent.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Remove(ctx, storage.KeyToken); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	if had {
		s.logger.Info("session cleared")
	}
	return nil
}

// Claims describes what the token says about itself. Nothing here is verified.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the token payload without checking its signature.
// Opaque (non-JWT) tokens return an error.
func (s *Session) Claims() (Claims, error) {
	tok := s.Token()
	if tok == "" {
		return Claims{}, ErrNoToken
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, mc); err != nil {
		return Claims{}, fmt.Errorf("decoding token: %w", err)
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
