// ABOUTME: Tests for route matching, the guard, and the navigator
// ABOUTME: Uses go-cmp to compare resolved locations

package router

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFlag bool

func (a *authFlag) IsAuthenticated() bool { return bool(*a) }

// flapping alternates on every call.
type flapping struct{ n int }

func (f *flapping) IsAuthenticated() bool {
	f.n++
	return f.n%2 == 0
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path     string
		wantName string
		want     Params
		found    bool
	}{
		{"/login", "Login", Params{}, true},
		{"/", "Layout", Params{}, true},
		{"/dashboard/", "Dashboard", Params{}, true},
		{"/review/42", "Review", Params{"fileId": "42"}, true},
		{"/documents/9/edit", "DocumentEdit", Params{"id": "9"}, true},
		{"/documents?skip=20", "Documents", Params{}, true},
		{"files", "Files", Params{}, true},
		{"/review", "", nil, false},
		{"/nope", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, params, ok := Match(tt.path)
			require.Equal(t, tt.found, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantName, r.Name)
			if diff := cmp.Diff(tt.want, params); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTable_ChildrenRequireAuth(t *testing.T) {
	for _, r := range Table {
		switch r.Path {
		case PathLogin, PathRegister:
			assert.False(t, r.RequiresAuth, r.Path)
		default:
			assert.True(t, r.RequiresAuth, r.Path)
		}
	}
	root, ok := Lookup("Layout")
	require.True(t, ok)
	assert.Equal(t, "/dashboard", root.Redirect)
}

func TestGuard(t *testing.T) {
	login, _, _ := Match("/login")
	register, _, _ := Match("/register")
	files, _, _ := Match("/files")

	tests := []struct {
		name  string
		route Route
		auth  bool
		want  Decision
	}{
		{"protected anonymous", files, false, RedirectTo("/login")},
		{"protected signed in", files, true, Allowed},
		{"login anonymous", login, false, Allowed},
		{"login signed in", login, true, RedirectTo("/")},
		{"register signed in", register, true, RedirectTo("/")},
		{"register anonymous", register, false, Allowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Guard(tt.route, tt.auth)); diff != "" {
				t.Errorf("Guard mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRouter_AnonymousGoesToLogin(t *testing.T) {
	auth := authFlag(false)
	r := New(&auth, nil)

	loc, err := r.Navigate("/files")
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, ViewLogin, loc.Route.View)
}

func TestRouter_SignedInLoginGoesToDashboard(t *testing.T) {
	auth := authFlag(true)
	r := New(&auth, nil)

	loc, err := r.Navigate("/login")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", loc.Path)
	assert.Equal(t, ViewDashboard, loc.Route.View)
}

func TestRouter_ParamsAndHistory(t *testing.T) {
	auth := authFlag(true)
	r := New(&auth, nil)

	_, err := r.Navigate("/files")
	require.NoError(t, err)
	loc, err := r.Navigate("/review/12")
	require.NoError(t, err)

	want := Location{Path: "/review/12", Route: loc.Route, Params: Params{"fileId": "12"}}
	if diff := cmp.Diff(want, r.Current()); diff != "" {
		t.Errorf("current mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, r.History(), 1)
	assert.Equal(t, "/files", r.History()[0].Path)

	back, ok, err := r.Back()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/files", back.Path)
	assert.Empty(t, r.History())

	_, ok, err = r.Back()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRouter_BackRechecksGuard(t *testing.T) {
	auth := authFlag(true)
	r := New(&auth, nil)
	_, err := r.Navigate("/templates")
	require.NoError(t, err)
	_, err = r.Navigate("/files")
	require.NoError(t, err)

	auth = false
	back, ok, err := r.Back()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/login", back.Path)
}

func TestRouter_RedirectFromFailureHandler(t *testing.T) {
	auth := authFlag(true)
	r := New(&auth, nil)
	_, err := r.Navigate("/documents")
	require.NoError(t, err)

	auth = false
	require.NoError(t, r.Redirect("/login"))
	assert.Equal(t, "/login", r.Current().Path)
}

func TestRouter_NotFound(t *testing.T) {
	auth := authFlag(true)
	r := New(&auth, nil)

	_, err := r.Navigate("/missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, r.Current().Path)
}

func TestRouter_RedirectLoop(t *testing.T) {
	r := New(&flapping{}, nil)

	_, err := r.Navigate("/files")
	assert.ErrorIs(t, err, ErrRedirectLoop)
}

func TestBuild(t *testing.T) {
	assert.Equal(t, "/review/5", Build("/review/:fileId", Params{"fileId": "5"}))
	assert.Equal(t, "/documents/3/edit", Build("/documents/:id/edit", Params{"id": "3"}))
}
