// ABOUTME: Navigator holding the current location, applying the guard on every navigation
// ABOUTME: Follows guard and route redirects up to a fixed depth to catch loops

package router

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrNotFound is returned for paths with no route.
	ErrNotFound = errors.New("route not found")
	// ErrRedirectLoop is returned when redirects do not settle.
	ErrRedirectLoop = errors.New("too many redirects")
)

const maxRedirects = 8

// AuthState reports whether the session is authenticated.
type AuthState interface {
	IsAuthenticated() bool
}

// Location is a resolved navigation target.
type Location struct {
	Path   string
	Route  Route
	Params Params
}

// Router navigates between routes.
type Router struct {
	auth   AuthState
	logger *slog.Logger

	mu      sync.Mutex
	current Location
	history []Location
}

func New(auth AuthState, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{auth: auth, logger: logger.With("component", "router")}
}

// Resolve runs the guard and redirects for path without changing the current location.
func (r *Router) Resolve(path string) (Location, error) {
	seen := path
	for range maxRedirects {
		route, params, ok := Match(path)
		if !ok {
			return Location{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if d := Guard(route, r.auth.IsAuthenticated()); !d.Allow {
			path = d.Redirect
			continue
		}
		if route.Redirect != "" {
			path = route.Redirect
			continue
		}
		return Location{Path: normalize(path), Route: route, Params: params}, nil
	}
	return Location{}, fmt.Errorf("%w: starting at %s", ErrRedirectLoop, seen)
}

// Navigate resolves path and makes it the current location.
func (r *Router) Navigate(path string) (Location, error) {
	loc, err := r.Resolve(path)
	if err != nil {
		return Location{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current.Path != "" {
		r.history = append(r.history, r.current)
	}
	r.current = loc
	if loc.Path != normalize(path) {
		r.logger.Debug("navigation redirected", "from", path, "to", loc.Path)
	}
	return loc, nil
}

// Redirect navigates to path, discarding the location.
func (r *Router) Redirect(path string) error {
	_, err := r.Navigate(path)
	return err
}

// Back returns to the previous location, re-running the guard.
// It reports false when there is no history.
func (r *Router) Back() (Location, bool, error) {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return Location{}, false, nil
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.mu.Unlock()

	loc, err := r.Resolve(prev.Path)
	if err != nil {
		return Location{}, true, err
	}
	r.mu.Lock()
	r.current = loc
	r.mu.Unlock()
	return loc, true, nil
}

// Current returns the current location. Its Path is empty before the first navigation.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns previous locations, oldest first.
func (r *Router) History() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Location, len(r.history))
	copy(out, r.history)
	return out
}
