package callwire

// Property types accepted in a ParameterSchema. These mirror the JSON Schema
// primitive type names; a definition using anything else is rejected at
// registration time.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// PropertySchema describes a single property of a function's parameters.
type PropertySchema struct {
	Type        string                    `json:"type"`
	Description string                    `json:"description,omitempty"`
	Enum        []any                     `json:"enum,omitempty"`
	Format      string                    `json:"format,omitempty"`
	Default     any                       `json:"default,omitempty"`
	Items       *PropertySchema           `json:"items,omitempty"`
	Properties  map[string]PropertySchema `json:"properties,omitempty"`
	Required    []string                  `json:"required,omitempty"`
}

// ParameterSchema describes the parameters object of a function. Type must
// be "object"; scalar parameter schemas are invalid.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// FunctionDefinition is the immutable description of a callable function:
// a unique name, human-readable description, and the parameter schema the
// validator enforces before any handler runs.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// FunctionCall is one request to invoke a function with concrete parameters.
type FunctionCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// ToolCall wraps a FunctionCall with a correlation ID. The ID is caller
// supplied or generated by the executor when empty.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FunctionResponse is the outcome of a single call: either Result is set and
// Status is "success", or Error is set and Status is "error". Never both.
type FunctionResponse struct {
	Result any          `json:"result"`
	Error  *ErrorDetail `json:"error,omitempty"`
	Status string       `json:"status"`
}

// OK reports whether the response carries a success result.
func (r FunctionResponse) OK() bool { return r.Status == StatusSuccess && r.Error == nil }

// ToolResponse correlates a FunctionResponse back to its ToolCall ID.
type ToolResponse struct {
	ID       string           `json:"id"`
	Function FunctionResponse `json:"function"`
}

// Chunk statuses for streamed execution. A chunk sequence is zero or more
// in_progress chunks followed by exactly one final chunk whose status is
// complete or error.
const (
	ChunkInProgress = "in_progress"
	ChunkComplete   = "complete"
	ChunkError      = "error"
)

// StreamingChunk is one unit of a streamed result.
type StreamingChunk struct {
	ChunkID string       `json:"chunk_id"`
	CallID  string       `json:"call_id"`
	Content any          `json:"content"`
	IsFinal bool         `json:"is_final"`
	Error   *ErrorDetail `json:"error,omitempty"`
	Status  string       `json:"status"`
}

// FunctionList is the wire shape of a function listing.
type FunctionList struct {
	Functions []FunctionDefinition `json:"functions"`
}
