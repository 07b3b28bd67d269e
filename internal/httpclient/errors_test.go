// ABOUTME: Tests for failure classification and the default presenter
// ABOUTME: Covers detail extraction, kind mapping and the 401 logout/redirect path

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/2389/docreview/internal/notify"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{
			name: "401",
			err:  &StatusError{StatusCode: http.StatusUnauthorized},
			want: Failure{Kind: KindUnauthorized, StatusCode: 401},
		},
		{
			name: "500 with detail",
			err:  &StatusError{StatusCode: 500, Body: []byte(`{"detail":"AI service unavailable"}`)},
			want: Failure{Kind: KindRejected, StatusCode: 500, Detail: "AI service unavailable"},
		},
		{
			name: "404 without body",
			err:  &StatusError{StatusCode: 404},
			want: Failure{Kind: KindRejected, StatusCode: 404},
		},
		{
			name: "validation list",
			err:  &StatusError{StatusCode: 422, Body: []byte(`{"detail":[{"msg":"field required"},{"msg":"value is not a valid email"}]}`)},
			want: Failure{Kind: KindRejected, StatusCode: 422, Detail: "field required; value is not a valid email"},
		},
		{
			name: "non json body",
			err:  &StatusError{StatusCode: 502, Body: []byte("<html>bad gateway</html>")},
			want: Failure{Kind: KindRejected, StatusCode: 502},
		},
		{
			name: "deadline",
			err:  fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
			want: Failure{Kind: KindTimedOut},
		},
		{
			name: "net timeout",
			err:  timeoutErr{},
			want: Failure{Kind: KindTimedOut},
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"),
			want: Failure{Kind: KindNetwork},
		},
		{
			name: "canceled",
			err:  context.Canceled,
			want: Failure{Kind: KindNetwork},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

type fakeSession struct{ cleared int }

func (f *fakeSession) Clear(context.Context) error {
	f.cleared++
	return nil
}

type fakeNavigator struct{ paths []string }

func (f *fakeNavigator) Redirect(path string) error {
	f.paths = append(f.paths, path)
	return nil
}

func TestPresenter_Unauthorized(t *testing.T) {
	sess := &fakeSession{}
	nav := &fakeNavigator{}
	rec := &notify.Recorder{}
	p := &Presenter{Session: sess, Navigator: nav, Notifier: rec}

	p.HandleFailure(context.Background(), Failure{Kind: KindUnauthorized, StatusCode: 401})

	assert.Equal(t, 1, sess.cleared)
	assert.Equal(t, []string{"/login"}, nav.paths)
	assert.Equal(t, []notify.Notification{{Level: notify.LevelError, Message: MsgSessionExpired}}, rec.All())
}

func TestPresenter_Messages(t *testing.T) {
	tests := []struct {
		failure Failure
		want    string
	}{
		{Failure{Kind: KindRejected, StatusCode: 400, Detail: "Username already registered"}, "Username already registered"},
		{Failure{Kind: KindRejected, StatusCode: 500}, MsgRequestFailed},
		{Failure{Kind: KindTimedOut}, MsgTimedOut},
		{Failure{Kind: KindNetwork}, MsgNetworkError},
	}

	for _, tt := range tests {
		sess := &fakeSession{}
		rec := &notify.Recorder{}
		p := &Presenter{Session: sess, Notifier: rec}

		p.HandleFailure(context.Background(), tt.failure)

		assert.Equal(t, []notify.Notification{{Level: notify.LevelError, Message: tt.want}}, rec.All())
		assert.Zero(t, sess.cleared, "only 401 touches the session")
	}
}

func TestPresenter_RepeatedFailuresEachNotify(t *testing.T) {
	rec := &notify.Recorder{}
	p := &Presenter{Notifier: rec}
	notFound := Failure{Kind: KindRejected, StatusCode: 404, Detail: "File not found"}

	p.HandleFailure(context.Background(), notFound)
	p.HandleFailure(context.Background(), notFound)
	assert.Len(t, rec.All(), 2)

	rec.Reset()
	ctx := notify.WithDedupe(context.Background(), notify.NewDedupe(time.Minute, 0))
	p.HandleFailure(ctx, Failure{Kind: KindNetwork})
	p.HandleFailure(ctx, Failure{Kind: KindNetwork})
	assert.Equal(t, []notify.Notification{{Level: notify.LevelError, Message: MsgNetworkError}}, rec.All(),
		"one fan-out shows an identical failure once")
}
