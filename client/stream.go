package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/callwire/callwire"
)

// streamRequest is the first frame sent on a streaming connection.
type streamRequest struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// StreamFunction invokes a remote function over the WebSocket streaming
// endpoint and returns its chunk sequence. The channel closes after the
// final chunk, or when the connection drops; a drop before the final chunk
// is the implicit-truncation case that CollectStream reports as
// stream_truncated. Cancelling ctx closes the connection and stops
// delivery. Streamed results never touch the cache.
func (c *Client) StreamFunction(ctx context.Context, name string, parameters map[string]any, callID string) (<-chan callwire.StreamingChunk, error) {
	wsURL, err := c.streamURL("/api/functions/stream")
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if c.opts.apiKey != "" {
		header.Set("X-API-Key", c.opts.apiKey)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: dialing %s: %v", callwire.ErrRequestFailed, wsURL, err)
	}

	req := streamRequest{ID: callID, Name: name, Parameters: parameters}
	if err := conn.WriteJSON(req); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: sending stream request: %v", callwire.ErrRequestFailed, err)
	}

	out := make(chan callwire.StreamingChunk)
	go func() {
		defer close(out)
		defer func() { _ = conn.Close() }()

		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close() // unblocks ReadMessage
			case <-done:
			}
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var chunk callwire.StreamingChunk
			if err := json.Unmarshal(data, &chunk); err != nil {
				c.opts.logger.Warn("discarding malformed chunk", "error", err)
				continue
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
			if chunk.IsFinal {
				return
			}
		}
	}()
	return out, nil
}

// streamURL rewrites the base URL's scheme for WebSocket dialing.
func (c *Client) streamURL(path string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}
