// ABOUTME: Tests for session state and session operations
// ABOUTME: Uses memory storage and a scripted authenticator in place of the backend

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/storage"
)

type fakeAuth struct {
	token    *api.Token
	loginErr error
	user     *api.User
	meErr    error
	meCalls  int
	lastUser string
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (*api.Token, error) {
	f.lastUser = username
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.token, nil
}

func (f *fakeAuth) Register(_ context.Context, req api.RegisterRequest) (*api.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.User{ID: 7, Username: req.Username, Email: req.Email}, nil
}

func (f *fakeAuth) Me(context.Context) (*api.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func newTestService(t *testing.T, auth *fakeAuth) (*Service, storage.Storage) {
	t.Helper()
	st := storage.NewMemoryStorage()
	s := New(st, nil)
	require.NoError(t, s.Init(context.Background()))
	return NewService(s, auth, nil), st
}

func TestSession_InitHydratesToken(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Set(ctx, storage.KeyToken, "persisted"))

	s := New(st, nil)
	assert.False(t, s.IsAuthenticated())
	require.NoError(t, s.Init(ctx))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "persisted", s.Token())
	assert.Nil(t, s.User())
}

func TestSession_InitEmptyStorage(t *testing.T) {
	s := New(storage.NewMemoryStorage(), nil)
	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
}

func TestSession_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	s := New(st, nil)
	require.NoError(t, s.SetToken(ctx, "abc"))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	assert.False(t, s.IsAuthenticated())
	_, ok, err := st.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_ClearPropagatesStorageError(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	s := New(st, nil)
	require.NoError(t, s.SetToken(ctx, "abc"))
	require.NoError(t, st.Close())

	err := s.Clear(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrClosed))
	assert.False(t, s.IsAuthenticated(), "memory state is cleared even when storage fails")
}

func TestSession_SetTokenNotHeldWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	s := New(st, nil)
	require.NoError(t, st.Close())

	err := s.SetToken(ctx, "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrClosed))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
}

func TestService_LoginWithClosedStorageStaysLoggedOut(t *testing.T) {
	auth := &fakeAuth{token: &api.Token{AccessToken: "tok-1"}, user: &api.User{ID: 1, Username: "alice"}}
	svc, st := newTestService(t, auth)
	require.NoError(t, st.Close())

	err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "pw"})
	require.Error(t, err)
	assert.False(t, svc.Session().IsAuthenticated())
	assert.Zero(t, auth.meCalls)
}

func TestSession_UserReturnsCopy(t *testing.T) {
	s := New(storage.NewMemoryStorage(), nil)
	s.setUser(&api.User{Username: "alice"})

	u := s.User()
	u.Username = "mallory"
	assert.Equal(t, "alice", s.User().Username)
}

func TestSession_Claims(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStorage(), nil)

	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrNoToken)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)
	require.NoError(t, s.SetToken(ctx, signed))

	c, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Subject)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Minute)))

	require.NoError(t, s.SetToken(ctx, "opaque-token"))
	_, err = s.Claims()
	assert.Error(t, err)
}

func TestService_LoginStoresTokenAndFetchesUser(t *testing.T) {
	auth := &fakeAuth{
		token: &api.Token{AccessToken: "tok-1", TokenType: "bearer"},
		user:  &api.User{ID: 1, Username: "alice"},
	}
	svc, st := newTestService(t, auth)
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, Credentials{Username: "alice", Password: "pw"}))

	assert.Equal(t, "alice", auth.lastUser)
	assert.True(t, svc.Session().IsAuthenticated())
	assert.Equal(t, "tok-1", svc.Session().Token())
	require.NotNil(t, svc.Session().User())
	assert.Equal(t, "alice", svc.Session().User().Username)

	persisted, ok, err := st.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", persisted)
}

func TestService_LoginFailureStoresNothing(t *testing.T) {
	auth := &fakeAuth{loginErr: errors.New("401")}
	svc, st := newTestService(t, auth)
	ctx := context.Background()

	err := svc.Login(ctx, Credentials{Username: "alice", Password: "bad"})
	require.Error(t, err)
	assert.False(t, svc.Session().IsAuthenticated())
	assert.Zero(t, auth.meCalls)

	_, ok, err := st.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_LoginEmptyTokenRejected(t *testing.T) {
	svc, _ := newTestService(t, &fakeAuth{token: &api.Token{}})
	err := svc.Login(context.Background(), Credentials{Username: "a", Password: "b"})
	require.Error(t, err)
	assert.False(t, svc.Session().IsAuthenticated())
}

func TestService_LoginThenProfileFailureClearsSession(t *testing.T) {
	auth := &fakeAuth{
		token: &api.Token{AccessToken: "tok-1"},
		meErr: errors.New("boom"),
	}
	svc, _ := newTestService(t, auth)

	require.NoError(t, svc.Login(context.Background(), Credentials{Username: "alice", Password: "pw"}))
	assert.False(t, svc.Session().IsAuthenticated())
	assert.Nil(t, svc.Session().User())
}

func TestService_FetchCurrentUserWithoutToken(t *testing.T) {
	auth := &fakeAuth{user: &api.User{Username: "alice"}}
	svc, _ := newTestService(t, auth)

	svc.FetchCurrentUser(context.Background())
	assert.Zero(t, auth.meCalls)
	assert.Nil(t, svc.Session().User())
}

func TestService_FetchCurrentUserFailureSwallowed(t *testing.T) {
	auth := &fakeAuth{meErr: errors.New("network down")}
	svc, _ := newTestService(t, auth)
	ctx := context.Background()
	require.NoError(t, svc.Session().SetToken(ctx, "stale"))

	svc.FetchCurrentUser(ctx)

	assert.Equal(t, 1, auth.meCalls)
	assert.False(t, svc.Session().IsAuthenticated())
}

func TestService_RegisterDoesNotLogIn(t *testing.T) {
	svc, _ := newTestService(t, &fakeAuth{})

	u, err := svc.Register(context.Background(), api.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.False(t, svc.Session().IsAuthenticated())
}

func TestService_LogoutTwice(t *testing.T) {
	svc, _ := newTestService(t, &fakeAuth{})
	ctx := context.Background()
	require.NoError(t, svc.Session().SetToken(ctx, "tok"))

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.Session().IsAuthenticated())
}
