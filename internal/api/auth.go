// ABOUTME: Auth resource: form login, registration and current user lookup
// ABOUTME: Login posts multipart username/password the way OAuth2 password forms expect

package api

import (
	"context"
)

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated user's profile.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsActive bool   `json:"is_active"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name,omitempty"`
}

type AuthAPI struct {
	c requester
}

// Login exchanges credentials for a bearer token.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*Token, error) {
	var tok Token
	fields := map[string]string{"username": username, "password": password}
	if err := a.c.PostMultipart(ctx, "/auth/login", fields, nil, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var u User
	if err := a.c.Post(ctx, "/auth/register", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Me returns the profile of the token holder.
func (a *AuthAPI) Me(ctx context.Context) (*User, error) {
	var u User
	if err := a.c.Get(ctx, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
