package callwire

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds carried by ErrorDetail. These are the only failure shapes a
// caller ever sees; raw handler errors are wrapped, never propagated.
const (
	KindToolNotFound      = "tool_not_found"
	KindInvalidParameters = "invalid_parameters"
	KindHandlerError      = "handler_error"
	KindStreamTruncated   = "stream_truncated"
	KindProxyConnection   = "proxy_connection_error"
	KindProxyError        = "proxy_error"
)

// Sentinel errors. Use errors.Is to check.
var (
	ErrValidation    = errors.New("validation failed")
	ErrTimeout       = errors.New("call timed out")
	ErrRequestFailed = errors.New("request failed")
)

// ErrorDetail is the structured error shape embedded in responses and
// chunks: a kind from the taxonomy above, a human-readable message, and
// optional structured detail (offending field names, remote error kind).
type ErrorDetail struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
}

func (e *ErrorDetail) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ErrorResponse builds an error FunctionResponse from a kind and message.
func ErrorResponse(kind, message string, detail map[string]any) FunctionResponse {
	return FunctionResponse{
		Error:  &ErrorDetail{Kind: kind, Message: message, Detail: detail},
		Status: StatusError,
	}
}

// SuccessResponse wraps a handler result as a success FunctionResponse.
func SuccessResponse(result any) FunctionResponse {
	return FunctionResponse{Result: result, Status: StatusSuccess}
}

// FieldType records a single type mismatch found during validation.
type FieldType struct {
	Field string `json:"field"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// FieldValue records an enum violation found during validation.
type FieldValue struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// ValidationError reports every problem found while checking a call's
// parameters against a definition. At least one slice is non-empty.
type ValidationError struct {
	Missing       []string
	Unknown       []string
	TypeMismatch  []FieldType
	EnumViolation []FieldValue
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown fields: "+strings.Join(e.Unknown, ", "))
	}
	for _, tm := range e.TypeMismatch {
		parts = append(parts, fmt.Sprintf("field %q: expected %s, got %s", tm.Field, tm.Want, tm.Got))
	}
	for _, ev := range e.EnumViolation {
		parts = append(parts, fmt.Sprintf("field %q: value %v is not an allowed enum member", ev.Field, ev.Value))
	}
	return "invalid parameters: " + strings.Join(parts, "; ")
}

// Unwrap tags ValidationError with the ErrValidation sentinel.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// ErrorDetail renders the validation failure as the structured
// invalid_parameters error shape carried by responses.
func (e *ValidationError) ErrorDetail() *ErrorDetail {
	detail := make(map[string]any)
	if len(e.Missing) > 0 {
		detail["missing_fields"] = e.Missing
	}
	if len(e.Unknown) > 0 {
		detail["unknown_fields"] = e.Unknown
	}
	if len(e.TypeMismatch) > 0 {
		detail["type_mismatch"] = e.TypeMismatch
	}
	if len(e.EnumViolation) > 0 {
		detail["enum_violation"] = e.EnumViolation
	}
	return &ErrorDetail{Kind: KindInvalidParameters, Message: e.Error(), Detail: detail}
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Unknown) == 0 &&
		len(e.TypeMismatch) == 0 && len(e.EnumViolation) == 0
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// panicError wraps a recovered panic value so the executor can report it as
// a handler failure without re-raising.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
