// ABOUTME: Development fake of the document review backend serving /api/v1 over chi
// ABOUTME: Implements the REST surface the client uses with in-memory state and no AI

package fakebackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/2389/docreview/internal/api"
)

// APIPrefix is where the API is mounted.
const APIPrefix = "/api/v1"

// Options configures a Server.
type Options struct {
	Secret   []byte
	TokenTTL time.Duration
	Logger   *slog.Logger
	// AIRateLimit caps review and generate calls per client IP per minute. Zero disables it.
	AIRateLimit int
	// AIDelay is added to review and generate calls to simulate model latency.
	AIDelay time.Duration
	// PublicURL is used in preview and download links. Defaults to the request host.
	PublicURL string
}

// Server is the fake backend.
type Server struct {
	store    *store
	tokens   *Tokens
	logger   *slog.Logger
	validate *validator.Validate
	opts     Options

	healthMu sync.Mutex
	health   healthState
}

func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("docreview-dev-secret")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:    newStore(),
		tokens:   NewTokens(opts.Secret, opts.TokenTTL),
		logger:   logger.With("component", "fakebackend"),
		validate: validator.New(),
		opts:     opts,
		health:   newHealthState(),
	}
}

// Tokens returns the token issuer, for tests that need to mint tokens.
func (s *Server) Tokens() *Tokens {
	return s.tokens
}

// AddUser creates an account directly.
func (s *Server) AddUser(username, password string) (api.User, error) {
	u, err := s.store.addUser(api.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	if err != nil {
		return api.User{}, err
	}
	return u.User, nil
}

// Handler returns the HTTP handler serving the API under APIPrefix.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Get("/health/check", s.handleHealthCheck)
		r.Get("/onlyoffice/health", s.handleEditorHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/auth/me", s.handleMe)

			r.Post("/files/upload", s.handleUpload)
			r.Get("/files/list", s.handleListFiles)
			r.Get("/files/{id}/preview", s.handleFilePreview)
			r.Get("/files/{id}/download", s.handleFileDownload)
			r.Delete("/files/{id}", s.handleDeleteFile)

			r.Group(func(r chi.Router) {
				if s.opts.AIRateLimit > 0 {
					r.Use(httprate.LimitByIP(s.opts.AIRateLimit, time.Minute))
				}
				r.Post("/documents/review", s.handleReview)
				r.Post("/documents/generate", s.handleGenerate)
			})
			r.Get("/documents/list", s.handleListDocuments)
			r.Get("/documents/classifications", s.handleClassifications)
			r.Get("/documents/conversation/history", s.handleConversationHistory)
			r.Delete("/documents/conversation/clear", s.handleClearConversation)
			r.Get("/documents/conversation/info", s.handleConversationInfo)
			r.Get("/documents/{id}", s.handleGetDocument)
			r.Put("/documents/{id}", s.handleUpdateDocument)
			r.Put("/documents/{id}/classification", s.handleUpdateClassification)
			r.Get("/documents/{id}/preview", s.handleDocumentPreview)
			r.Get("/documents/{id}/download", s.handleDocumentDownload)

			r.Post("/templates/create", s.handleCreateTemplate)
			r.Get("/templates/list", s.handleListTemplates)
			r.Get("/templates/{id}", s.handleGetTemplate)

			r.Post("/versions/create", s.handleCreateVersion)
			r.Get("/versions/list/{documentID}", s.handleListVersions)
			r.Post("/versions/compare", s.handleCompareVersions)
			r.Post("/versions/rollback", s.handleRollback)
			r.Get("/versions/{id}", s.handleGetVersion)

			r.Get("/audit-logs/list", s.handleListAudit)
			r.Get("/audit-logs/stats", s.handleAuditStats)
			r.Get("/audit-logs/export", s.handleAuditExport)
			r.Get("/audit-logs/{id}", s.handleGetAudit)

			r.Get("/admin/rules/list", s.handleListRules)
			r.Get("/admin/rules/performance", s.handleRulePerformance)
			r.Get("/admin/rules/statistics", s.handleRuleStatistics)
			r.Put("/admin/rules/{id}/toggle", s.handleToggleRule)
			r.Post("/admin/rules/reload", s.handleReloadRules)

			r.Get("/health/status", s.handleHealthStatus)
			r.Get("/health/fallback-stats", s.handleFallbackStats)

			r.Post("/onlyoffice/config", s.handleEditorConfig)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Debug("encoding response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// validationIssue mirrors one entry of a 422 detail list.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeValidation(w http.ResponseWriter, issues []validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

// decodeBody decodes a JSON body into dst and validates it, writing the error response on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeValidation(w, []validationIssue{{Loc: []string{"body"}, Msg: "Invalid JSON body", Type: "value_error.jsondecode"}})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return false
		}
		issues := make([]validationIssue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, validationIssue{
				Loc:  []string{"body", jsonFieldName(fe.Field())},
				Msg:  fmt.Sprintf("%s failed %s validation", jsonFieldName(fe.Field()), fe.Tag()),
				Type: "value_error." + fe.Tag(),
			})
		}
		writeValidation(w, issues)
		return false
	}
	return true
}

func jsonFieldName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && field[i-1] >= 'a' && field[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, []validationIssue{{Loc: []string{"path", name}, Msg: "value is not a valid integer", Type: "type_error.integer"}})
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) audit(r *http.Request, u *user, action, resourceType string, resourceID *int64, details map[string]any) {
	s.store.record(u, action, resourceType, resourceID, details, clientIP(r), r.UserAgent())
}

func (s *Server) publicURL(r *http.Request, path string) string {
	base := s.opts.PublicURL
	if base == "" {
		base = "http://" + r.Host
	}
	return strings.TrimRight(base, "/") + APIPrefix + path
}
