// ABOUTME: Aggregate client for all backend resource modules plus shared wire types
// ABOUTME: Timestamp tolerates the naive ISO datetimes the backend emits

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/2389/docreview/internal/httpclient"
)

// requester is the subset of *httpclient.Client the modules call.
type requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
	PostMultipart(ctx context.Context, path string, fields map[string]string, files []httpclient.FormFile, out any) error
	Download(ctx context.Context, path string, query url.Values, w io.Writer) (int64, error)
	URL(path string, query url.Values) string
}

// Client groups every resource module.
type Client struct {
	Auth      *AuthAPI
	Files     *FilesAPI
	Documents *DocumentsAPI
	Templates *TemplatesAPI
	Versions  *VersionsAPI
	AuditLogs *AuditLogsAPI
	Rules     *RulesAPI
	Health    *HealthAPI
	Editor    *EditorAPI
}

// New builds every resource module. long is used for AI-bound operations.
func New(standard, long *httpclient.Client) *Client {
	return &Client{
		Auth:      &AuthAPI{c: standard},
		Files:     &FilesAPI{c: standard},
		Documents: &DocumentsAPI{c: standard, long: long},
		Templates: &TemplatesAPI{c: standard},
		Versions:  &VersionsAPI{c: standard},
		AuditLogs: &AuditLogsAPI{c: standard},
		Rules:     &RulesAPI{c: standard},
		Health:    &HealthAPI{c: standard},
		Editor:    &EditorAPI{c: standard},
	}
}

// Message is the generic {"message": ...} acknowledgement.
type Message struct {
	Message string `json:"message"`
	Success *bool  `json:"success,omitempty"`
}

// Timestamp is a time that also accepts ISO datetimes without a zone.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.UTC().Format(time.RFC3339Nano))), nil
}

func idPath(prefix string, id int64, suffix string) string {
	return prefix + "/" + strconv.FormatInt(id, 10) + suffix
}
