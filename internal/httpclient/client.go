// ABOUTME: HTTP client for the document backend with bearer injection and response unwrapping
// ABOUTME: Every failure is classified, handed to the FailureHandler once, then returned to the caller

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default timeouts for the two client instances.
const (
	DefaultTimeout     = 30 * time.Second
	LongRunningTimeout = 120 * time.Second
)

// maxErrorBody bounds how much of an error response is kept for detail extraction.
const maxErrorBody = 64 << 10

// TokenSource provides the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Tokens    TokenSource
	Failures  FailureHandler
	Logger    *slog.Logger
	Transport http.RoundTripper
}

// Client issues requests against the backend API.
type Client struct {
	base     *url.URL
	http     *http.Client
	tokens   TokenSource
	failures FailureHandler
	logger   *slog.Logger
}

// New creates a Client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	failures := opts.Failures
	if failures == nil {
		failures = FailureHandlerFunc(func(context.Context, Failure) {})
	}

	return &Client{
		base:     base,
		http:     &http.Client{Timeout: timeout, Transport: opts.Transport},
		tokens:   tokens,
		failures: failures,
		logger:   logger.With("component", "httpclient", "timeout", timeout.String()),
	}, nil
}

// Timeout returns the per-request timeout of the client.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// URL returns the absolute URL for path with the given query.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// CloseIdleConnections closes idle keep-alive connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// Get issues GET path?query and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", decodeInto(out))
}

// Post sends body as JSON and decodes the response into out. A nil body sends no payload.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues DELETE path with an optional query and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, "", decodeInto(out))
}

// FormFile is a file part of a multipart form.
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// PostMultipart sends fields and files as multipart/form-data and decodes the response into out.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FormFile, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("writing form field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return fmt.Errorf("creating form file %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("copying %s: %w", f.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType(), decodeInto(out))
}

// Download streams the response body of GET path?query into w and returns the byte count.
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) (int64, error) {
	var n int64
	err := c.do(ctx, http.MethodGet, path, query, nil, "", func(body io.Reader) error {
		var err error
		n, err = io.Copy(w, body)
		if err != nil {
			return &transportError{err: err}
		}
		return nil
	})
	return n, err
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		r = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, nil, r, contentType, decodeInto(out))
}

// transportError marks a body read failure so it is classified like a round trip failure.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// decodeInto reads the whole body and unmarshals it into out. A nil out discards the body.
func decodeInto(out any) func(io.Reader) error {
	return func(body io.Reader) error {
		data, err := io.ReadAll(body)
		if err != nil {
			return &transportError{err: err}
		}
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
}

// do runs one round trip. handle is only called for 2xx responses.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, handle func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, method, path, requestID, contextFailure(ctx, err))
	}
	defer resp.Body.Close()

	c.logger.Debug("backend response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.fail(ctx, method, path, requestID, &StatusError{StatusCode: resp.StatusCode, Body: data})
	}

	if err := handle(resp.Body); err != nil {
		var te *transportError
		if errors.As(err, &te) {
			return c.fail(ctx, method, path, requestID, contextFailure(ctx, te.err))
		}
		return err
	}
	return nil
}

// contextFailure replaces a transport error with ctx.Err() once ctx is done.
// A cancel cause set by a sibling call must not be classified as this call's failure.
func contextFailure(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request aborted: %w", ctxErr)
	}
	return err
}

// fail classifies err, runs the failure handler once and returns the wrapped error.
func (c *Client) fail(ctx context.Context, method, path, requestID string, err error) error {
	f := Classify(err)
	c.logger.Debug("backend call failed",
		"method", method,
		"path", path,
		"kind", f.Kind.String(),
		"status", f.StatusCode,
		"request_id", requestID,
		"error", err,
	)
	c.failures.HandleFailure(ctx, f)
	return &Error{Method: method, Path: path, Failure: f, Err: err}
}
