// ABOUTME: End-to-end tests of the docreview command tree against the fake backend
// ABOUTME: Each invocation builds a fresh app so state only survives through token storage

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docreview/internal/fakebackend"
	"github.com/2389/docreview/internal/httpclient"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type cli struct {
	backend *fakebackend.Server
	config  string
	dataDir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	backend := fakebackend.New(fakebackend.Options{})
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)
	_, err := backend.AddUser("alice", "wonderland")
	require.NoError(t, err)

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfg := fmt.Sprintf("server:\n  base_url: %s%s\nstorage:\n  driver: file\n  path: %s\n",
		ts.URL, fakebackend.APIPrefix, dataDir)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0600))

	return &cli{backend: backend, config: cfgPath, dataDir: dataDir}
}

func (c *cli) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--config", c.config, "--no-color"}, args...))

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	err := root.ExecuteContext(context.Background())
	a.close()
	return out.String(), errOut.String(), err
}

func (c *cli) login(t *testing.T) {
	t.Helper()
	_, _, err := c.run(t, "", "login", "alice", "-p", "wonderland")
	require.NoError(t, err)
}

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	c := newCLI(t)

	_, stderr, err := c.run(t, "", "login", "alice", "--password", "wonderland")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Logged in as alice")

	stdout, _, err := c.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Username:  alice")

	_, _, err = c.run(t, "", "logout")
	require.NoError(t, err)

	_, _, err = c.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLI_LoginPromptsForPassword(t *testing.T) {
	c := newCLI(t)

	_, stderr, err := c.run(t, "wonderland\n", "login", "alice")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Password: ")
	assert.Contains(t, stderr, "Logged in as alice")
}

func TestCLI_CommandsRequireLogin(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "", "files", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLI_UploadListReview(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	path := filepath.Join(t.TempDir(), "plan.txt")
	require.NoError(t, os.WriteFile(path, []byte("Annual plan\n\nThe budget password is kept elsewhere for now."), 0600))

	_, stderr, err := c.run(t, "", "files", "upload", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Uploaded plan.txt as file 1")

	stdout, _, err := c.run(t, "", "files", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "plan.txt")

	stdout, _, err = c.run(t, "", "review", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Review of document")
	assert.Contains(t, stdout, "sensitive_words")
}

func TestCLI_ExpiredTokenIsCleared(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.MkdirAll(c.dataDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(c.dataDir, "token"), []byte("not-a-valid-token"), 0600))

	_, stderr, err := c.run(t, "", "files", "list")
	var herr *httpclient.Error
	require.True(t, errors.As(err, &herr))
	assert.Contains(t, stderr, httpclient.MsgSessionExpired)

	_, err = os.Stat(filepath.Join(c.dataDir, "token"))
	assert.True(t, os.IsNotExist(err), "token file should be removed after a 401")
}

func TestCLI_TemplateCreateFromYAML(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	def := filepath.Join(t.TempDir(), "memo.yaml")
	require.NoError(t, os.WriteFile(def, []byte(`name: Weekly memo
document_type: memo
content_template: "Subject: {{subject}}"
fields:
  subject: string
`), 0600))

	_, stderr, err := c.run(t, "", "templates", "create", def)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Created template")

	stdout, _, err := c.run(t, "", "templates", "list", "--type", "memo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Weekly memo")
}

func TestCLI_TemplateDefinitionIsValidated(t *testing.T) {
	c := newCLI(t)

	def := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(def, []byte("name: Missing fields\n"), 0600))

	_, _, err := c.run(t, "", "templates", "create", def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template definition")
}

func TestCLI_AuditExportURL(t *testing.T) {
	c := newCLI(t)

	stdout, _, err := c.run(t, "", "audit", "export-url", "--action", "login", "--from", "2026-01-01")
	require.NoError(t, err)
	assert.Contains(t, stdout, "/audit-logs/export?")
	assert.Contains(t, stdout, "action=login")
	assert.Contains(t, stdout, "start_date=2026-01-01")
}

func TestCLI_RulesToggle(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	_, _, err := c.run(t, "", "rules", "disable", "double_space")
	require.NoError(t, err)

	stdout, _, err := c.run(t, "", "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "double_space")
}

func TestCLI_RoutesSkipsBootstrap(t *testing.T) {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "routes"})
	var out bytes.Buffer
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "/documents/:id/edit")
	assert.Contains(t, out.String(), "-> /dashboard")
}

func TestCLI_BadIDIsRejectedLocally(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "", "review", "abc")
	require.Error(t, err)
	assert.Equal(t, `invalid id "abc"`, err.Error())
}
