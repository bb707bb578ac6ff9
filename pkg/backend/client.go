// Package backend provides the authenticated HTTP transport to the
// questionnaire generation service: JSON POST calls for the
// conversational endpoints and a streaming POST for the SSE endpoint.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"qgen/pkg/protocol"
)

// TokenSource yields the current bearer credential, or "" when no
// credential is available. Requests proceed anonymously without one;
// the backend decides whether to reject them.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// DefaultTimeout bounds the conversational JSON calls. Generation can
// legitimately take minutes, so this is deliberately generous; streaming
// calls are bounded only by the caller's context.
const DefaultTimeout = 3 * time.Minute

// Client issues requests against one backend base URL.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the JSON call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for baseURL. tokens may be nil for a client that
// only ever issues anonymous requests.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON posts body as JSON to path and decodes the 2xx response into
// out (skipped when out is nil). Non-2xx responses become
// *protocol.RequestFailedError; expiry of the client's own timeout
// becomes *protocol.TimeoutError. A context cancelled before the call
// is issued returns ctx.Err() without touching the network.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	callCtx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.post(callCtx, path, body)
	if err != nil {
		return c.timedOut(ctx, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.timedOut(ctx, path, fmt.Errorf("read response from %s: %w", path, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromBody(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// PostRaw posts body as JSON to path and returns the raw 2xx response
// bytes. Callers that decode tagged unions use this instead of PostJSON.
func (c *Client) PostRaw(ctx context.Context, path string, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	callCtx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.post(callCtx, path, body)
	if err != nil {
		return nil, c.timedOut(ctx, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.timedOut(ctx, path, fmt.Errorf("read response from %s: %w", path, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failureFromBody(resp.StatusCode, data)
	}
	return data, nil
}

// PostStream posts body as JSON to path and returns the raw response
// body for SSE consumption. The caller owns the ReadCloser and must
// close it; cancelling ctx aborts the stream.
func (c *Client) PostStream(ctx context.Context, path string, body any) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		return nil, failureFromBody(resp.StatusCode, data)
	}
	return resp.Body, nil
}

// Get issues an authenticated GET against path (with query already
// encoded) and decodes the 2xx JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	callCtx, cancel := c.bound(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", path, err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.timedOut(ctx, path, fmt.Errorf("backend GET %s: %w", path, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.timedOut(ctx, path, fmt.Errorf("read response from %s: %w", path, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromBody(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// bound applies the client's call timeout to ctx. Streaming calls do
// not use it; they are bounded by the caller's context alone.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// timedOut maps a deadline expiry caused by the client's own timeout to
// *protocol.TimeoutError. parent is the caller's context; when it has
// failed too, the expiry was the caller's and the error passes through
// unchanged, as does every non-deadline error.
func (c *Client) timedOut(parent context.Context, path string, err error) error {
	if c.timeout > 0 && parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return &protocol.TimeoutError{Path: path, Timeout: c.timeout}
	}
	return err
}

// post builds and issues an authenticated JSON POST.
func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend POST %s: %w", path, err)
	}
	return resp, nil
}

// decorate attaches the bearer credential (when available) and a
// per-request ID for backend-side correlation.
func (c *Client) decorate(req *http.Request) {
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json, text/event-stream")
}

// failureFromBody converts a non-2xx body into a RequestFailedError,
// preferring the backend's JSON "detail" field.
func failureFromBody(status int, body []byte) error {
	detail := fmt.Sprintf("request failed with status %d", status)
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		detail = parsed.Detail
	}
	return &protocol.RequestFailedError{Status: status, Detail: detail}
}
