package callwire

import (
	"encoding/json"
	"strings"
)

// ExtractFunctionCall finds a function call embedded in free-form text, as
// produced by an LLM. It recognizes fenced ```json blocks, bare {...}
// objects, and function_call(...)/tool_call(...) wrappers. The first
// candidate that parses to an object with "name" and "parameters" (directly
// or nested under "function") wins.
func ExtractFunctionCall(text string) (FunctionCall, bool) {
	for _, candidate := range callCandidates(text) {
		var raw map[string]any
		if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
			continue
		}
		if nested, ok := raw["function"].(map[string]any); ok {
			raw = nested
		}
		name, _ := raw["name"].(string)
		params, okParams := raw["parameters"].(map[string]any)
		if name == "" || !okParams {
			continue
		}
		return FunctionCall{Name: name, Parameters: params}, true
	}
	return FunctionCall{}, false
}

func callCandidates(text string) []string {
	var out []string
	if start := strings.Index(text, "```json"); start >= 0 {
		rest := text[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			out = append(out, strings.Trim(strings.TrimSpace(rest[:end]), "`"))
		}
	}
	for _, marker := range []string{"function_call(", "tool_call("} {
		if start := strings.Index(text, marker); start >= 0 {
			rest := text[start+len(marker):]
			if end := strings.IndexByte(rest, ')'); end >= 0 {
				out = append(out, strings.TrimSpace(rest[:end]))
			}
		}
	}
	if obj, ok := firstBalancedObject(text); ok {
		out = append(out, obj)
	}
	return out
}

// firstBalancedObject returns the first {...} span with balanced braces.
// Brace counting ignores braces inside JSON strings.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
