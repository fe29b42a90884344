// Package client is the typed HTTP consumer of the Compass catalog API.
// Every call decodes the standard response envelope and maps HTTP failures
// onto the shared error taxonomy; a 401 anywhere additionally fires the
// configured unauthorized handler so the session can be invalidated
// centrally.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/radarhq/compass"
)

// TokenSource supplies the bearer token for outgoing requests; return ""
// when no session exists.
type TokenSource func() string

// Client talks to one Compass API base URL.
type Client struct {
	baseURL        string
	http           *http.Client
	token          TokenSource
	onUnauthorized func()
	logger         compass.Logger

	Auth      *AuthService
	Solutions *SolutionsService
	History   *HistoryService
	Catalog   *CatalogService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource wires the bearer-token supplier (normally the session
// manager's storage).
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.token = ts
		}
	}
}

// WithUnauthorizedHandler registers the hook fired whenever any call
// returns 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithLogger overrides the logger.
func WithLogger(l compass.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   func() string { return "" },
		logger:  compass.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.Auth = &AuthService{client: c}
	c.Solutions = &SolutionsService{client: c}
	c.History = &HistoryService{client: c}
	c.Catalog = &CatalogService{client: c}

	return c
}

// SetUnauthorizedHandler replaces the 401 hook after construction. The
// session manager uses this to wire itself to a client it was built from.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	form    url.Values
	headers map[string]string
}

// do executes req and decodes the response body into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.body != nil:
		raw, err := json.Marshal(req.body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to encode request body")
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	if token := c.token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "request failed").
			WithMetadata(map[string]any{
				"method": req.method,
				"path":   req.path,
			})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read response")
	}

	if resp.StatusCode >= 400 {
		return c.statusError(req, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to decode response").
			WithMetadata(map[string]any{"path": req.path})
	}

	return nil
}

// statusError maps an HTTP failure onto the shared taxonomy, preserving
// the envelope detail message when present.
func (c *Client) statusError(req request, status int, raw []byte) error {
	detail := envelopeDetail(raw)
	meta := map[string]any{
		"method": req.method,
		"path":   req.path,
		"status": status,
	}
	if detail != "" {
		meta["detail"] = detail
	}

	switch status {
	case http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return compass.ErrUnauthorized.WithMetadata(meta)
	case http.StatusForbidden:
		return compass.ErrForbidden.WithMetadata(meta)
	case http.StatusNotFound:
		return compass.ErrNotFound.WithMetadata(meta)
	case http.StatusConflict:
		return compass.ErrDuplicateName.WithMetadata(meta)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		msg := detail
		if msg == "" {
			msg = "invalid request"
		}
		return errors.New(msg, errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithMetadata(meta)
	}

	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("server error (%d)", status)
	}
	c.logger.Warn("api call failed: %s %s -> %d", req.method, req.path, status)
	return errors.New(msg, errors.CategoryOperation).
		WithCode(status).
		WithMetadata(meta)
}

func envelopeDetail(raw []byte) string {
	var env struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Detail
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
