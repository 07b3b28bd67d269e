// ABOUTME: Tests for the renderers and the route-driven view loader
// ABOUTME: Drives views against the fake backend with color disabled

package views

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/fakebackend"
	"github.com/2389/docreview/internal/httpclient"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/router"
	"github.com/2389/docreview/internal/session"
	"github.com/2389/docreview/internal/storage"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newViews(t *testing.T) (*Views, *api.Client, *bytes.Buffer) {
	t.Helper()
	backend := fakebackend.New(fakebackend.Options{})
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	sess := session.New(storage.NewMemoryStorage(), nil)
	c, err := httpclient.New(httpclient.Options{BaseURL: ts.URL + fakebackend.APIPrefix, Tokens: sess})
	require.NoError(t, err)
	t.Cleanup(c.CloseIdleConnections)
	client := api.New(c, c)

	_, err = backend.AddUser("dana", "pass1234")
	require.NoError(t, err)
	require.NoError(t, session.NewService(sess, client.Auth, nil).Login(ctx, session.Credentials{Username: "dana", Password: "pass1234"}))

	var out bytes.Buffer
	return New(client, sess, &out), client, &out
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "日本語...", Truncate("日本語テキストです", 6))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "2.0 MB", HumanSize(2<<20))
}

func TestRenderReview_OrdersErrorsFirst(t *testing.T) {
	var buf bytes.Buffer
	recovery := 60
	RenderReview(&buf, &api.ReviewResult{
		DocumentID: 4,
		Summary:    "2 issues",
		Errors: []api.ReviewIssue{
			{Level: "warning", Description: "minor thing"},
			{Level: "error", Description: "major thing", Suggestion: "fix it"},
		},
		FallbackMode:      true,
		FallbackNotice:    "local rules only",
		EstimatedRecovery: &recovery,
	})

	out := buf.String()
	assert.Contains(t, out, "local rules only")
	assert.Contains(t, out, "60 seconds")
	assert.Less(t, strings.Index(out, "major thing"), strings.Index(out, "minor thing"))
	assert.Contains(t, out, "→ fix it")
}

func TestRenderReview_NoIssues(t *testing.T) {
	var buf bytes.Buffer
	RenderReview(&buf, &api.ReviewResult{DocumentID: 1})
	assert.Contains(t, buf.String(), "No issues found")
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	err := RenderHTML(&buf, &api.Document{
		ID:      3,
		Title:   "Plan <draft>",
		Content: "# Heading\n\nSome *emphasis*.",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<title>Plan &lt;draft&gt;</title>")
	assert.Contains(t, out, "<h1>Heading</h1>")
	assert.Contains(t, out, "<em>emphasis</em>")
}

func TestShow_RoutesRender(t *testing.T) {
	v, client, out := newViews(t)
	ctx := context.Background()

	f, err := client.Files.Upload(ctx, "notes.txt", strings.NewReader("Notes\n\nThe quick brown fox jumps over it."))
	require.NoError(t, err)
	res, err := client.Documents.Review(ctx, f.ID)
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"/files", "notes.txt"},
		{"/documents", "notes.txt"},
		{"/review/" + itoa(f.ID), "Preview: notes.txt"},
		{"/documents/" + itoa(res.DocumentID) + "/edit", "Initial review"},
		{"/templates", "(no templates)"},
		{"/generate", "generate <template-id>"},
		{"/audit-logs", "upload"},
		{"/system-health", "AI service healthy"},
		{"/rules-management", "sensitive_words"},
		{"/login", "login <username>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out.Reset()
			route, params, ok := router.Match(tt.path)
			require.True(t, ok)
			err := v.Show(ctx, router.Location{Path: tt.path, Route: route, Params: params})
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestDashboard(t *testing.T) {
	v, client, out := newViews(t)
	ctx := context.Background()

	_, err := client.Files.Upload(ctx, "dash.txt", strings.NewReader("Dash\n\ncontent that is long enough"))
	require.NoError(t, err)

	require.NoError(t, v.Dashboard(ctx))
	s := out.String()
	assert.Contains(t, s, "Welcome, dana")
	assert.Contains(t, s, "dash.txt")
	assert.Contains(t, s, "AI service healthy")
	assert.Contains(t, s, "By action")
}

func TestDashboard_ExpiredSessionNotifiesOnce(t *testing.T) {
	ts := httptest.NewServer(fakebackend.New(fakebackend.Options{}).Handler())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	sess := session.New(storage.NewMemoryStorage(), nil)
	require.NoError(t, sess.SetToken(ctx, "forged"))
	rec := &notify.Recorder{}
	c, err := httpclient.New(httpclient.Options{
		BaseURL:  ts.URL + fakebackend.APIPrefix,
		Tokens:   sess,
		Failures: &httpclient.Presenter{Session: sess, Notifier: rec},
	})
	require.NoError(t, err)
	t.Cleanup(c.CloseIdleConnections)

	var out bytes.Buffer
	err = New(api.New(c, c), sess, &out).Dashboard(ctx)
	require.Error(t, err)
	assert.True(t, httpclient.IsUnauthorized(err))
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, []notify.Notification{{Level: notify.LevelError, Message: httpclient.MsgSessionExpired}}, rec.All())
}

func TestShow_BadParam(t *testing.T) {
	v, _, _ := newViews(t)
	route, _, _ := router.Match("/review/1")
	err := v.Show(context.Background(), router.Location{Route: route, Params: router.Params{"fileId": "abc"}})
	assert.Error(t, err)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestRenderConversation(t *testing.T) {
	var buf bytes.Buffer
	RenderConversation(&buf, &api.ConversationHistory{Messages: []map[string]any{
		{"role": "user", "content": "Draft a memo"},
		{"role": "assistant", "content": "Generated document 3"},
	}})
	out := buf.String()
	assert.Contains(t, out, "you: Draft a memo")
	assert.Contains(t, out, "ai:  Generated document 3")

	buf.Reset()
	RenderConversation(&buf, &api.ConversationHistory{})
	assert.Contains(t, buf.String(), "(no messages)")
}
