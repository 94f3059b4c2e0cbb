package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/callwire/callwire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// API-key auth is the access control here; accept any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// streamRequest is the first frame a streaming client sends. The tool
// endpoint additionally accepts the nested {id, function:{name,parameters}}
// shape.
type streamRequest struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	Function   *struct {
		Name       string         `json:"name"`
		Parameters map[string]any `json:"parameters"`
	} `json:"function"`
}

func (s *Server) handleStreamFunction(w http.ResponseWriter, r *http.Request) {
	s.serveStream(w, r, false)
}

func (s *Server) handleStreamTool(w http.ResponseWriter, r *http.Request) {
	s.serveStream(w, r, true)
}

// serveStream upgrades the connection, reads one call request, and frames
// the resulting chunk sequence onto the socket. Malformed requests get a
// single final error chunk, mirroring the coordinator's contract of always
// terminating a started stream.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, toolShape bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	_, data, err := conn.ReadMessage()
	if err != nil {
		s.logger.Warn("websocket client disconnected", "error", err)
		return
	}
	var req streamRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeFinalError(conn, "", "invalid JSON in request")
		return
	}
	name, params := req.Name, req.Parameters
	if toolShape && req.Function != nil {
		name, params = req.Function.Name, req.Function.Parameters
	}
	if name == "" || params == nil {
		s.writeFinalError(conn, req.ID, "invalid request format: must include 'name' and 'parameters'")
		return
	}

	call := callwire.ToolCall{
		ID:       req.ID,
		Function: callwire.FunctionCall{Name: name, Parameters: params},
	}
	for chunk := range s.executor.ExecuteStream(r.Context(), call) {
		if err := conn.WriteJSON(chunk); err != nil {
			s.logger.Warn("websocket write failed", "call_id", chunk.CallID, "error", err)
			return
		}
	}
}

func (s *Server) writeFinalError(conn *websocket.Conn, callID, message string) {
	chunk := callwire.StreamingChunk{
		ChunkID: uuid.NewString(),
		CallID:  callID,
		IsFinal: true,
		Status:  callwire.ChunkError,
		Error: &callwire.ErrorDetail{
			Kind:    callwire.KindInvalidParameters,
			Message: message,
		},
	}
	if err := conn.WriteJSON(chunk); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
	}
}
