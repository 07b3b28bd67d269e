// ABOUTME: Session operations that talk to the backend: login, register, logout, current user
// ABOUTME: Failures are already notified by the HTTP client; these only keep state consistent

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/docreview/internal/api"
)

// Authenticator is the subset of the auth resource the Service needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.Token, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.User, error)
	Me(ctx context.Context) (*api.User, error)
}

// Credentials are a username and password pair.
type Credentials struct {
	Username string
	Password string
}

// Service performs session operations against the backend.
type Service struct {
	session *Session
	auth    Authenticator
	logger  *slog.Logger
}

func NewService(s *Session, auth Authenticator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		session: s,
		auth:    auth,
		logger:  logger.With("component", "session"),
	}
}

// Session returns the underlying session.
func (svc *Service) Session() *Session {
	return svc.session
}

// Login exchanges credentials for a token, stores it, and fetches the profile.
// On failure no token is stored.
func (svc *Service) Login(ctx context.Context, creds Credentials) error {
	tok, err := svc.auth.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return err
	}
	if tok == nil || tok.AccessToken == "" {
		return errors.New("login response carried no access token")
	}
	if err := svc.session.SetToken(ctx, tok.AccessToken); err != nil {
		return err
	}
	svc.logger.Info("logged in", "username", creds.Username)
	svc.FetchCurrentUser(ctx)
	return nil
}

// Register creates an account. It does not log in.
func (svc *Service) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	u, err := svc.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	svc.logger.Info("registered", "username", u.Username)
	return u, nil
}

// Logout clears the session. Logging out twice is fine.
func (svc *Service) Logout(ctx context.Context) error {
	if err := svc.session.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// FetchCurrentUser refreshes the cached profile. Without a token it does nothing.
// Any failure clears the session; the error is logged and not returned.
func (svc *Service) FetchCurrentUser(ctx context.Context) {
	if !svc.session.IsAuthenticated() {
		return
	}
	u, err := svc.auth.Me(ctx)
	if err != nil {
		svc.logger.Warn("fetching current user failed, clearing session", "error", err)
		if cerr := svc.session.Clear(ctx); cerr != nil {
			svc.logger.Warn("clearing session", "error", cerr)
		}
		return
	}
	svc.session.setUser(u)
}
