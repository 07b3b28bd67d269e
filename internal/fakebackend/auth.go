// ABOUTME: Login, registration and current-user handlers of the fake backend
// ABOUTME: Login accepts the password form as multipart or urlencoded

package fakebackend

import (
	"errors"
	"net/http"

	"github.com/2389/docreview/internal/api"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeDetail(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	username, password := r.FormValue("username"), r.FormValue("password")
	if username == "" || password == "" {
		writeValidation(w, []validationIssue{{Loc: []string{"body", "username"}, Msg: "field required", Type: "value_error.missing"}})
		return
	}

	u, ok := s.store.authenticate(username, password)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Incorrect username or password")
		return
	}
	if !u.IsActive {
		writeDetail(w, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := s.tokens.Generate(u.Username)
	if err != nil {
		s.logger.Error("signing token", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	s.audit(r, u, "login", "user", &u.ID, nil)
	writeJSON(w, http.StatusOK, api.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	u, err := s.store.addUser(req)
	if err != nil {
		var dup errDuplicate
		if errors.As(err, &dup) {
			writeDetail(w, http.StatusBadRequest, dup.Error())
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Could not create user")
		return
	}
	s.audit(r, u, "register", "user", &u.ID, nil)
	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r).User)
}
