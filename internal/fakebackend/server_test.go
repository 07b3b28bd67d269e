// ABOUTME: Tests for the fake backend's authentication surface and token handling
// ABOUTME: Speaks raw HTTP so the client packages are not involved

package fakebackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func detailOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Detail
}

func TestTokens_RoundTrip(t *testing.T) {
	tok := NewTokens([]byte("secret"), time.Hour)
	signed, err := tok.Generate("alice")
	require.NoError(t, err)

	sub, err := tok.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestTokens_Rejects(t *testing.T) {
	tok := NewTokens([]byte("secret"), time.Hour)
	other, err := NewTokens([]byte("other"), time.Hour).Generate("alice")
	require.NoError(t, err)
	expired, err := tok.generate("alice", -time.Minute)
	require.NoError(t, err)

	_, err = tok.Verify(other)
	assert.True(t, errors.Is(err, ErrInvalidToken))
	_, err = tok.Verify(expired)
	assert.True(t, errors.Is(err, ErrExpiredToken))
	_, err = tok.Verify("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		token   string
		wantErr bool
	}{
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
		{"Bearer abc", "abc", false},
	}
	for _, tt := range tests {
		tok, msg := extractBearerToken(tt.header)
		assert.Equal(t, tt.token, tok, tt.header)
		assert.Equal(t, tt.wantErr, msg != "", tt.header)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	srv, ts := newTestServer(t, Options{})
	_, err := srv.AddUser("alice", "correct-horse")
	require.NoError(t, err)

	resp, err := http.PostForm(ts.URL+APIPrefix+"/auth/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("WWW-Authenticate"))
	assert.Equal(t, "Incorrect username or password", detailOf(t, resp))
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	srv, ts := newTestServer(t, Options{})
	_, err := srv.AddUser("alice", "correct-horse")
	require.NoError(t, err)

	resp, err := http.PostForm(ts.URL+APIPrefix+"/auth/login", url.Values{"username": {"alice"}, "password": {"correct-horse"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)

	sub, err := srv.Tokens().Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	for _, path := range []string{"/auth/me", "/files/list", "/health/status", "/admin/rules/list"} {
		resp, err := http.Get(ts.URL + APIPrefix + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"), path)
		assert.NotEmpty(t, detailOf(t, resp), path)
		resp.Body.Close()
	}
}

func TestRegister_ValidationAndDuplicates(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	post := func(body string) *http.Response {
		resp, err := http.Post(ts.URL+APIPrefix+"/auth/register", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post(`{"username":"bob","email":"bob@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(`{"username":"bob","email":"other@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already registered", detailOf(t, resp))

	resp = post(`{"username":"x","email":"not-an-email","password":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body struct {
		Detail []validationIssue `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Detail)
}

func TestJSONFieldName(t *testing.T) {
	assert.Equal(t, "document_type", jsonFieldName("DocumentType"))
	assert.Equal(t, "template_id", jsonFieldName("TemplateID"))
	assert.Equal(t, "prompt", jsonFieldName("Prompt"))
}

func TestLineDelta(t *testing.T) {
	added, removed := lineDelta("a\nb\nc", "a\nc\nd")
	assert.Equal(t, []string{"d"}, added)
	assert.Equal(t, []string{"b"}, removed)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, paginate(items, 2, 2))
	assert.Equal(t, []int{}, paginate(items, 10, 2))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, paginate(items, 0, 0))
}
