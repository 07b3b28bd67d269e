// ABOUTME: Default failure presentation: notifications plus forced logout on 401
// ABOUTME: Keeps side effects out of classification so both can be tested separately

package httpclient

import (
	"context"
	"log/slog"

	"github.com/2389/docreview/internal/notify"
)

// Messages shown for each failure kind.
const (
	MsgSessionExpired = "Session expired, please log in again"
	MsgRequestFailed  = "Request failed"
	MsgTimedOut       = "Request timed out, please try again later"
	MsgNetworkError   = "Network error, please check your connection"
)

// LoginPath is where an unauthorized response sends the user.
const LoginPath = "/login"

// FailureHandler reacts to a classified failure. It is called once per failing call.
type FailureHandler interface {
	HandleFailure(ctx context.Context, f Failure)
}

// FailureHandlerFunc adapts a function to FailureHandler.
type FailureHandlerFunc func(ctx context.Context, f Failure)

func (fn FailureHandlerFunc) HandleFailure(ctx context.Context, f Failure) { fn(ctx, f) }

// SessionClearer drops the current credentials.
type SessionClearer interface {
	Clear(ctx context.Context) error
}

// Navigator performs a client-side redirect.
type Navigator interface {
	Redirect(path string) error
}

// Presenter is the default FailureHandler.
// Session and Navigator may be nil, in which case that effect is skipped.
type Presenter struct {
	Session   SessionClearer
	Navigator Navigator
	Notifier  notify.Notifier
	Logger    *slog.Logger
}

func (p *Presenter) HandleFailure(ctx context.Context, f Failure) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := p.Notifier
	if n == nil {
		n = notify.Discard
	}
	n = notify.Scoped(ctx, n)

	switch f.Kind {
	case KindUnauthorized:
		if p.Session != nil {
			if err := p.Session.Clear(ctx); err != nil {
				logger.Warn("clearing session after 401", "error", err)
			}
		}
		if p.Navigator != nil {
			if err := p.Navigator.Redirect(LoginPath); err != nil {
				logger.Warn("redirecting to login", "error", err)
			}
		}
		notify.Error(n, MsgSessionExpired)
	case KindRejected:
		msg := f.Detail
		if msg == "" {
			msg = MsgRequestFailed
		}
		notify.Error(n, msg)
	case KindTimedOut:
		notify.Error(n, MsgTimedOut)
	default:
		notify.Error(n, MsgNetworkError)
	}
}
