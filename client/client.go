// Package client provides an HTTP/WebSocket client for a remote callwire
// server. Calls go through the result cache when one is configured, so
// repeated identical calls short-circuit the network round-trip.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/callwire/callwire"
	"github.com/callwire/callwire/cache"
)

// Client calls a remote callwire server.
type Client struct {
	baseURL string
	http    *http.Client
	opts    options
}

// New creates a Client for the server at baseURL (e.g. "http://host:8080").
func New(baseURL string, opts ...Option) *Client {
	o := options{
		timeout:    30 * time.Second,
		maxRetries: 3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: o.timeout},
		opts:    o,
	}
}

// ListFunctions returns the definitions of all functions on the server.
func (c *Client) ListFunctions(ctx context.Context) ([]callwire.FunctionDefinition, error) {
	var list callwire.FunctionList
	if err := c.doJSON(ctx, http.MethodGet, "/api/functions", nil, &list); err != nil {
		return nil, err
	}
	return list.Functions, nil
}

// GetFunction returns one function definition by name.
func (c *Client) GetFunction(ctx context.Context, name string) (callwire.FunctionDefinition, error) {
	var def callwire.FunctionDefinition
	err := c.doJSON(ctx, http.MethodGet, "/api/functions/"+url.PathEscape(name), nil, &def)
	return def, err
}

// CallFunction invokes a remote function. With a cache configured, a fresh
// cached success for the same (name, parameters) is returned without a
// network call, and a new success is stored on the way out; per-call
// WithoutCache skips both sides for that call only. The returned error is
// transport-level only — a remote failure arrives as an error-status
// response with a nil error.
func (c *Client) CallFunction(ctx context.Context, name string, parameters map[string]any, opts ...CallOption) (callwire.FunctionResponse, error) {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}
	useCache := c.opts.cache != nil && !co.skipCache
	if useCache {
		if resp, ok := c.opts.cache.Get(name, parameters); ok {
			c.opts.logger.Debug("cache hit", "function", name)
			return resp, nil
		}
	}

	body := callwire.FunctionCall{Name: name, Parameters: parameters}
	var resp callwire.FunctionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/functions/call", body, &resp); err != nil {
		return callwire.FunctionResponse{}, err
	}
	if useCache {
		c.opts.cache.Put(name, parameters, resp)
	}
	return resp, nil
}

// CallTool invokes a remote function with call-ID correlation.
func (c *Client) CallTool(ctx context.Context, call callwire.ToolCall) (callwire.ToolResponse, error) {
	var resp callwire.ToolResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/tools/call", call, &resp)
	return resp, err
}

// ExecuteFromText asks the server to extract and execute a function call
// embedded in free-form text.
func (c *Client) ExecuteFromText(ctx context.Context, text string) (callwire.FunctionResponse, error) {
	var resp callwire.FunctionResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/execute", map[string]string{"text": text}, &resp)
	return resp, err
}

// Cache returns the configured result cache, or nil.
func (c *Client) Cache() *cache.ResultCache { return c.opts.cache }

// doJSON performs one request with retries. Connection failures and 5xx
// responses are retried up to maxRetries with retryDelay between attempts;
// 4xx responses are not retried.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.maxRetries; attempt++ {
		if attempt > 0 {
			c.opts.logger.Warn("request failed, retrying",
				"path", path, "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(c.opts.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		retryable, err := c.doOnce(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

// StatusError is an HTTP error status reported by the server, as opposed to
// a failure to reach it. Wraps ErrRequestFailed for errors.Is checks.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%v: server returned %d: %s", callwire.ErrRequestFailed, e.Code, e.Body)
	}
	return fmt.Sprintf("%v: server returned %d", callwire.ErrRequestFailed, e.Code)
}

func (e *StatusError) Unwrap() error { return callwire.ErrRequestFailed }

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) (retryable bool, err error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.apiKey != "" {
		req.Header.Set("X-API-Key", c.opts.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return true, fmt.Errorf("%w: %s %s", callwire.ErrTimeout, method, path)
		}
		return true, fmt.Errorf("%w: %v", callwire.ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return true, &StatusError{Code: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return false, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: decoding response: %v", callwire.ErrRequestFailed, err)
	}
	return false, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
