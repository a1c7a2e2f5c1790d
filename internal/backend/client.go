// Package backend is the HTTP client for the external tiendagenai REST API.
// Clients are built per request from a Scope, so auth and tenant headers are
// never shared between sessions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	HeaderTenantID      = "X-Tenant-Id"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

type ctxKeyRequestID struct{}

// WithRequestID tags ctx so backend calls made with it carry the id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

// HTTPError is a non-2xx answer from the backend. It is returned unchanged to
// callers so handlers can relay the status and message.
type HTTPError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// Scope carries the per-session values attached to every request.
type Scope struct {
	Token    string
	TenantID string
}

// Factory builds scoped clients sharing one transport.
type Factory struct {
	baseURL string
	http    *http.Client
}

func NewFactory(baseURL string, timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Factory{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (f *Factory) New(s Scope) *Client {
	return &Client{baseURL: f.baseURL, http: f.http, scope: s}
}

type Client struct {
	baseURL string
	http    *http.Client
	scope   Scope
}

func (c *Client) Scope() Scope { return c.scope }

// do sends body as JSON and decodes a 2xx response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.scope.Token != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+c.scope.Token)
	}
	if c.scope.TenantID != "" {
		req.Header.Set(HeaderTenantID, c.scope.TenantID)
	}
	if id := RequestID(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Message: errorMessage(raw), Body: raw}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of a JSON error body.
func errorMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	var msg string
	if json.Unmarshal(body.Message, &msg) == nil && msg != "" {
		return msg
	}
	// some endpoints return a list of validation messages
	var msgs []string
	if json.Unmarshal(body.Message, &msgs) == nil && len(msgs) > 0 {
		return strings.Join(msgs, "; ")
	}
	return body.Error
}

func escape(s string) string { return url.PathEscape(s) }
