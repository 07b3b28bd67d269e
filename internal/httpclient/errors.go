// ABOUTME: Failure classification for backend calls
// ABOUTME: Maps transport and HTTP status errors onto Unauthorized, Rejected, TimedOut and NetworkError

package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind is the failure category of a backend call.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindRejected
	KindTimedOut
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRejected:
		return "rejected"
	case KindTimedOut:
		return "timed_out"
	case KindNetwork:
		return "network_error"
	default:
		return "unknown"
	}
}

// Failure is the tagged classification of a failed call.
// StatusCode and Detail are only set for KindUnauthorized and KindRejected.
type Failure struct {
	Kind       Kind
	StatusCode int
	Detail     string
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if d := detailFromBody(e.Body); d != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, d)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// Error is returned to callers for every failed call. It wraps the original error.
type Error struct {
	Method string
	Path   string
	Failure
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a classified 401.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnauthorized
}

// KindOf returns the failure kind of err, or 0 if err did not come from a Client.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Classify maps an error from a round trip onto a Failure.
func Classify(err error) Failure {
	var se *StatusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusUnauthorized {
			return Failure{Kind: KindUnauthorized, StatusCode: se.StatusCode, Detail: detailFromBody(se.Body)}
		}
		return Failure{Kind: KindRejected, StatusCode: se.StatusCode, Detail: detailFromBody(se.Body)}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Failure{Kind: KindTimedOut}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Failure{Kind: KindTimedOut}
	}

	return Failure{Kind: KindNetwork}
}

// detailFromBody extracts a FastAPI style "detail" message from an error body.
// A string detail is returned as is; a validation error list is joined by "; ".
func detailFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
