// Package server exposes a callwire Registry over HTTP and WebSocket:
// function listing and invocation as request/response, and streamed
// execution as StreamingChunk frames on a persistent connection. The
// transport frames chunks onto the wire; ordering and terminal-chunk
// guarantees belong to the streaming coordinator in the core.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/callwire/callwire"
)

// Server handles the HTTP/WebSocket API for one registry.
type Server struct {
	cfg      Config
	registry *callwire.Registry
	executor *callwire.Executor
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New builds a Server over registry. The executor is constructed from the
// config's timeout and concurrency settings.
func New(cfg Config, registry *callwire.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		registry: registry,
		executor: callwire.NewExecutor(registry,
			callwire.WithTimeout(cfg.CallTimeout),
			callwire.WithMaxConcurrency(cfg.MaxConcurrency),
			callwire.WithLogger(logger),
		),
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.logRequests(s.mux) }

// ListenAndServe runs the server on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", "addr", s.cfg.Addr, "tools", s.registry.Len())
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	return srv.ListenAndServe()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/functions", s.handleListFunctions)
	s.mux.HandleFunc("GET /api/functions/{name}", s.handleGetFunction)
	s.mux.HandleFunc("POST /api/functions/call", s.requireKey(s.handleCallFunction))
	s.mux.HandleFunc("POST /api/tools/call", s.requireKey(s.handleCallTool))
	s.mux.HandleFunc("POST /api/execute", s.requireKey(s.handleExecuteFromText))
	s.mux.HandleFunc("GET /api/functions/stream", s.handleStreamFunction)
	s.mux.HandleFunc("GET /api/tools/stream", s.handleStreamTool)
}

func (s *Server) handleListFunctions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, callwire.FunctionList{Functions: s.registry.List()})
}

func (s *Server) handleGetFunction(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	def, ok := s.registry.Definition(name)
	if !ok {
		writeError(w, http.StatusNotFound, "function '"+name+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleCallFunction(w http.ResponseWriter, r *http.Request) {
	var call callwire.FunctionCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.executor.Execute(r.Context(), call))
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	var call callwire.ToolCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.executor.ExecuteTool(r.Context(), call))
}

func (s *Server) handleExecuteFromText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	resp, ok := s.executor.ExecuteFromText(r.Context(), req.Text)
	if !ok {
		writeError(w, http.StatusBadRequest, "no function call found in text")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireKey guards an endpoint with the configured API keys. With no keys
// configured the endpoint is open.
func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.cfg.APIKeys) > 0 {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				writeError(w, http.StatusUnauthorized, "API key is required")
				return
			}
			if _, ok := s.cfg.APIKeys[key]; !ok {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
