package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/callwire/callwire"
	"github.com/callwire/callwire/cache"
	"github.com/callwire/callwire/client"
)

// ProxyDefinition describes the proxy tool, which forwards a call to a
// remote instance of this same system.
var ProxyDefinition = callwire.FunctionDefinition{
	Name:        "proxy",
	Description: "Call a function on a remote server",
	Parameters: callwire.ParameterSchema{
		Type: callwire.TypeObject,
		Properties: map[string]callwire.PropertySchema{
			"server_url": {
				Type:        callwire.TypeString,
				Description: "URL of the remote server",
			},
			"function_name": {
				Type:        callwire.TypeString,
				Description: "Name of the function to call on the remote server",
			},
			"parameters": {
				Type:        callwire.TypeObject,
				Description: "Parameters to pass to the remote function",
			},
			"api_key": {
				Type:        callwire.TypeString,
				Description: "Optional API key for authentication",
			},
			"timeout": {
				Type:        callwire.TypeNumber,
				Description: "Request timeout in seconds",
				Default:     30.0,
			},
		},
		Required: []string{"server_url", "function_name", "parameters"},
	},
}

// Proxy forwards calls to remote servers. Successful results are stored in
// the shared result cache under a key scoped by server URL, so two servers
// exposing the same function name never serve each other's results. Remote
// function definitions are cached per server URL so repeated calls do not
// re-list the remote catalog; that cache is advisory only — the remote
// executor still validates every call.
type Proxy struct {
	results *cache.ResultCache

	mu   sync.Mutex
	defs map[string]map[string]callwire.FunctionDefinition
}

// NewProxy creates a Proxy. results may be nil to forward without caching.
func NewProxy(results *cache.ResultCache) *Proxy {
	return &Proxy{
		results: results,
		defs:    make(map[string]map[string]callwire.FunctionDefinition),
	}
}

// Register registers the proxy tool on r.
func (p *Proxy) Register(r *callwire.Registry) error {
	return r.Register(ProxyDefinition, p.handle)
}

func (p *Proxy) handle(ctx context.Context, params map[string]any) (any, error) {
	serverURL, _ := params["server_url"].(string)
	functionName, _ := params["function_name"].(string)
	remoteParams, _ := params["parameters"].(map[string]any)
	apiKey, _ := params["api_key"].(string)
	timeout, _ := number(params["timeout"])

	cacheName := serverURL + "|" + functionName
	if p.results != nil {
		if cached, ok := p.results.Get(cacheName, remoteParams); ok {
			return cached.Result, nil
		}
	}

	c := p.newClient(serverURL, apiKey, time.Duration(timeout*float64(time.Second)))
	if err := p.ensureKnown(ctx, c, serverURL, functionName); err != nil {
		return nil, err
	}

	resp, err := c.CallFunction(ctx, functionName, remoteParams)
	if err != nil {
		return nil, forwardError(serverURL, functionName, err)
	}
	if !resp.OK() {
		return nil, remoteError(serverURL, functionName, resp.Error)
	}
	if p.results != nil {
		p.results.Put(cacheName, remoteParams, resp)
	}
	return resp.Result, nil
}

func (p *Proxy) newClient(serverURL, apiKey string, timeout time.Duration) *client.Client {
	opts := []client.Option{
		client.WithTimeout(timeout),
		client.WithRetries(1, 100*time.Millisecond),
	}
	if apiKey != "" {
		opts = append(opts, client.WithAPIKey(apiKey))
	}
	return client.New(serverURL, opts...)
}

// ensureKnown checks functionName against the per-server definition cache,
// listing the remote catalog on first contact and refetching one definition
// on a miss. A stale entry only affects this early check, never
// correctness.
func (p *Proxy) ensureKnown(ctx context.Context, c *client.Client, serverURL, functionName string) error {
	p.mu.Lock()
	defs, listed := p.defs[serverURL]
	_, known := defs[functionName]
	p.mu.Unlock()
	if known {
		return nil
	}

	if !listed {
		remote, err := c.ListFunctions(ctx)
		if err != nil {
			return forwardError(serverURL, functionName, err)
		}
		defs = make(map[string]callwire.FunctionDefinition, len(remote))
		for _, def := range remote {
			defs[def.Name] = def
		}
		p.mu.Lock()
		p.defs[serverURL] = defs
		_, known = defs[functionName]
		p.mu.Unlock()
		if known {
			return nil
		}
	}

	def, err := c.GetFunction(ctx, functionName)
	if err != nil {
		return &callwire.ErrorDetail{
			Kind:    callwire.KindProxyError,
			Message: fmt.Sprintf("function '%s' not found on server: %v", functionName, err),
			Detail:  map[string]any{"server_url": serverURL, "remote_kind": callwire.KindToolNotFound},
		}
	}
	p.mu.Lock()
	if p.defs[serverURL] == nil {
		p.defs[serverURL] = make(map[string]callwire.FunctionDefinition)
	}
	p.defs[serverURL][functionName] = def
	p.mu.Unlock()
	return nil
}

// InvalidateDefinitions drops the cached catalog for one server.
func (p *Proxy) InvalidateDefinitions(serverURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.defs, serverURL)
}

// forwardError classifies a failed request to a remote server. An HTTP
// error status below 500 is the server rejecting the request (bad API key,
// unknown route), reported as proxy_error with the status; anything else is
// a connectivity failure.
func forwardError(serverURL, functionName string, err error) error {
	var se *client.StatusError
	if errors.As(err, &se) && se.Code < 500 {
		return &callwire.ErrorDetail{
			Kind:    callwire.KindProxyError,
			Message: fmt.Sprintf("server %s rejected the call: %v", serverURL, err),
			Detail: map[string]any{
				"server_url":    serverURL,
				"function_name": functionName,
				"status":        se.Code,
			},
		}
	}
	return connectionError(serverURL, err)
}

func connectionError(serverURL string, err error) error {
	return &callwire.ErrorDetail{
		Kind:    callwire.KindProxyConnection,
		Message: fmt.Sprintf("failed to reach server %s: %v", serverURL, err),
		Detail:  map[string]any{"server_url": serverURL},
	}
}

func remoteError(serverURL, functionName string, remote *callwire.ErrorDetail) error {
	detail := map[string]any{
		"server_url":    serverURL,
		"function_name": functionName,
	}
	message := "remote call failed"
	if remote != nil {
		detail["remote_kind"] = remote.Kind
		detail["remote_detail"] = remote.Detail
		message = fmt.Sprintf("remote call failed: %s", remote.Message)
	}
	return &callwire.ErrorDetail{
		Kind:    callwire.KindProxyError,
		Message: message,
		Detail:  detail,
	}
}
