// Package callwire implements a schema-described tool-calling core: named
// functions with JSON-Schema-like parameter definitions, a registry, an
// executor that validates parameters before invoking handlers, and a
// streaming coordinator that delivers results as ordered chunk sequences.
//
// # Overview
//
// A caller submits a FunctionCall (name + parameters) to an Executor. The
// Executor looks the tool up in its Registry, validates the parameters
// against the tool's declared schema (filling defaults), invokes the
// handler, and wraps the outcome in a FunctionResponse. Failures never
// escape: lookup, validation, and handler errors all come back as
// structured error responses with a kind, message, and optional detail.
//
// Streamed execution (ExecuteStream) delivers the same call as a chunk
// channel: zero or more in_progress chunks followed by exactly one final
// chunk, complete or error.
//
// # Example
//
//	type Args struct {
//	    City string `json:"city" description:"City name"`
//	}
//	type Out struct {
//	    Temp float64 `json:"temp"`
//	}
//	reg := callwire.NewRegistry()
//	err := callwire.RegisterFunc(reg, "weather", "Get weather", func(_ context.Context, a Args) (Out, error) {
//	    return Out{Temp: 22.5}, nil
//	})
//	if err != nil { ... }
//	exec := callwire.NewExecutor(reg)
//	resp := exec.Execute(ctx, callwire.FunctionCall{Name: "weather", Parameters: map[string]any{"city": "Moscow"}})
//
// The cache, client, server, and tools subpackages build the surrounding
// system: a client-side LRU+TTL result cache, an HTTP/WebSocket client and
// server, and the bundled tool implementations including the remote
// forwarding proxy.
package callwire
