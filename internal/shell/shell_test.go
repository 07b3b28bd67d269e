// ABOUTME: Tests for the interactive shell
// ABOUTME: Feeds scripted input against the fake backend and checks routes, output and notifications

package shell

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

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

type fixture struct {
	backend *fakebackend.Server
	session *session.Session
	router  *router.Router
	notes   *notify.Recorder
	out     *bytes.Buffer
}

func runShell(t *testing.T, script string) *fixture {
	t.Helper()
	notes := &notify.Recorder{}
	sh, f := newShell(t, strings.NewReader(script), notes)
	f.notes = notes
	require.NoError(t, sh.Run(context.Background()))
	return f
}

// newShell wires a Shell against the fake backend with n behind the failure presenter and the shell.
func newShell(t *testing.T, in io.Reader, n notify.Notifier) (*Shell, *fixture) {
	t.Helper()
	backend := fakebackend.New(fakebackend.Options{})
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)
	_, err := backend.AddUser("alice", "wonderland")
	require.NoError(t, err)

	sess := session.New(storage.NewMemoryStorage(), nil)
	require.NoError(t, sess.Init(context.Background()))
	nav := router.New(sess, nil)
	presenter := &httpclient.Presenter{Session: sess, Navigator: nav, Notifier: n}

	c, err := httpclient.New(httpclient.Options{BaseURL: ts.URL + fakebackend.APIPrefix, Tokens: sess, Failures: presenter})
	require.NoError(t, err)
	t.Cleanup(c.CloseIdleConnections)
	client := api.New(c, c)

	var out bytes.Buffer
	sh := New(Options{
		API:      client,
		Service:  session.NewService(sess, client.Auth, nil),
		Router:   nav,
		Notifier: n,
		In:       in,
		Out:      &out,
	})
	return sh, &fixture{backend: backend, session: sess, router: nav, out: &out}
}

func messages(r *notify.Recorder, level notify.Level) []string {
	var out []string
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

func TestShell_StartsAtLoginWhenLoggedOut(t *testing.T) {
	f := runShell(t, "")
	assert.Contains(t, f.out.String(), "Log in")
	assert.Equal(t, router.PathLogin, f.router.Current().Path)
}

func TestShell_LoginNavigatesToDashboard(t *testing.T) {
	f := runShell(t, "login alice\nwonderland\nwhoami\n")

	assert.True(t, f.session.IsAuthenticated())
	assert.Equal(t, "/dashboard", f.router.Current().Path)
	assert.Contains(t, f.out.String(), "Password: ")
	assert.Contains(t, f.out.String(), "Welcome, alice")
	assert.Contains(t, messages(f.notes, notify.LevelSuccess), "Welcome, alice")
}

func TestShell_ProtectedPathRedirectsToLogin(t *testing.T) {
	f := runShell(t, "/files\n")
	assert.Equal(t, router.PathLogin, f.router.Current().Path)
}

func TestShell_UploadReviewAndLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Quarterly plan\n\nThis document is confidential and long enough to pass."), 0600))

	f := runShell(t, strings.Join([]string{
		"login alice wonderland",
		"upload " + path,
		"go /files",
		"review 1",
		"toggle double_space off",
		"logout",
	}, "\n")+"\n")

	out := f.out.String()
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "Review of document")
	assert.Contains(t, out, "sensitive_words")
	assert.False(t, f.session.IsAuthenticated())
	assert.Equal(t, router.PathLogin, f.router.Current().Path)
	assert.Contains(t, messages(f.notes, notify.LevelSuccess), "Logged out")
}

func TestShell_BackReturnsToPreviousRoute(t *testing.T) {
	f := runShell(t, "login alice wonderland\ngo /templates\ngo /documents\nback\n")
	assert.Equal(t, "/templates", f.router.Current().Path)
}

func TestShell_BadCommandsAreReported(t *testing.T) {
	f := runShell(t, "frobnicate\ngo\nreview abc\n")

	errs := messages(f.notes, notify.LevelError)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], `unknown command "frobnicate"`)
	assert.Equal(t, "usage: go <path>", errs[1])
	assert.Equal(t, `invalid id "abc"`, errs[2])
}

func TestShell_APIErrorsAreNotRepeated(t *testing.T) {
	f := runShell(t, "login alice wrong-password\n")

	assert.False(t, f.session.IsAuthenticated())
	assert.Equal(t, []string{"Incorrect username or password"}, messages(f.notes, notify.LevelError))
	assert.Equal(t, router.PathLogin, f.router.Current().Path)
}

func TestShell_BadLoginKeepsExistingSession(t *testing.T) {
	f := runShell(t, "login alice wonderland\ngo /files\nlogin alice wrong-password\n")

	assert.True(t, f.session.IsAuthenticated())
	assert.Equal(t, "/files", f.router.Current().Path)
	assert.Equal(t, []string{"Incorrect username or password"}, messages(f.notes, notify.LevelError))
}

func TestShell_EachFailingCommandNotifies(t *testing.T) {
	var console bytes.Buffer
	sh, _ := newShell(t, strings.NewReader("login alice wonderland\nreview 999\nreview 999\n"), notify.NewConsole(&console))
	require.NoError(t, sh.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(console.String(), "✗ File not found\n"), console.String())
}

// verifyNoLeaks checks for leaked goroutines after every other cleanup of t has run.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	ignore := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, ignore) })
}

func TestShell_QuitReleasesTheInputReader(t *testing.T) {
	verifyNoLeaks(t)

	sh, f := newShell(t, strings.NewReader("quit\nhelp\nhelp\n"), nil)
	require.NoError(t, sh.Run(context.Background()))
	assert.NotContains(t, f.out.String(), "Navigation:", "nothing after quit runs")
}

func TestShell_CancelStopsRun(t *testing.T) {
	verifyNoLeaks(t)

	pr, pw := io.Pipe()
	sh, _ := newShell(t, pr, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoError(t, pw.Close())
}

func TestShell_QuitStopsReading(t *testing.T) {
	f := runShell(t, "quit\nlogin alice wonderland\n")
	assert.False(t, f.session.IsAuthenticated())
}

func TestShell_HelpAndRoutes(t *testing.T) {
	f := runShell(t, "help\nroutes\n")
	out := f.out.String()
	assert.Contains(t, out, "login <user> [password]")
	assert.Contains(t, out, "/documents/:id/edit")
	assert.Contains(t, out, "(* requires login)")
}
