package tools

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/callwire/callwire"
)

// TransformTextDefinition describes the transform_text tool.
var TransformTextDefinition = callwire.FunctionDefinition{
	Name:        "transform_text",
	Description: "Transform text according to the specified operation",
	Parameters: callwire.ParameterSchema{
		Type: callwire.TypeObject,
		Properties: map[string]callwire.PropertySchema{
			"operation": {
				Type:        callwire.TypeString,
				Description: "The text operation to perform",
				Enum: []any{
					"uppercase", "lowercase", "capitalize", "title", "reverse",
					"count_chars", "count_words", "trim", "replace",
				},
			},
			"text": {
				Type:        callwire.TypeString,
				Description: "The input text",
			},
			"find": {
				Type:        callwire.TypeString,
				Description: "String to find (for replace operation)",
			},
			"replace_with": {
				Type:        callwire.TypeString,
				Description: "String to replace with (for replace operation)",
			},
		},
		Required: []string{"operation", "text"},
	},
}

// AnalyzeTextDefinition describes the analyze_text tool.
var AnalyzeTextDefinition = callwire.FunctionDefinition{
	Name:        "analyze_text",
	Description: "Analyze text and return statistics",
	Parameters: callwire.ParameterSchema{
		Type: callwire.TypeObject,
		Properties: map[string]callwire.PropertySchema{
			"text": {
				Type:        callwire.TypeString,
				Description: "The text to analyze",
			},
		},
		Required: []string{"text"},
	},
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// TransformText applies operation to text. find/replaceWith apply only to
// the replace operation; a nil find there is an error, a nil replaceWith
// means delete.
func TransformText(operation, text string, find, replaceWith *string) (any, error) {
	if text == "" {
		return "", nil
	}
	switch operation {
	case "uppercase":
		return strings.ToUpper(text), nil
	case "lowercase":
		return strings.ToLower(text), nil
	case "capitalize":
		return strings.ToUpper(text[:1]) + strings.ToLower(text[1:]), nil
	case "title":
		return titleCase(text), nil
	case "reverse":
		runes := []rune(text)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	case "count_chars":
		return len([]rune(text)), nil
	case "count_words":
		return len(strings.Fields(text)), nil
	case "trim":
		return strings.TrimSpace(text), nil
	case "replace":
		if find == nil {
			return nil, errors.New("'find' parameter is required for replace operation")
		}
		with := ""
		if replaceWith != nil {
			with = *replaceWith
		}
		return strings.ReplaceAll(text, *find, with), nil
	}
	return nil, fmt.Errorf("unknown operation: %s", operation)
}

func titleCase(text string) string {
	words := strings.Split(text, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// AnalyzeText returns basic statistics about text.
func AnalyzeText(text string) map[string]any {
	if text == "" {
		return map[string]any{
			"char_count":      0,
			"word_count":      0,
			"line_count":      0,
			"avg_word_length": 0.0,
			"is_empty":        true,
		}
	}
	words := wordRe.FindAllString(text, -1)
	total := 0
	for _, w := range words {
		total += len(w)
	}
	wordCount := len(words)
	avg := 0.0
	if wordCount > 0 {
		avg = float64(total) / float64(wordCount)
	}
	return map[string]any{
		"char_count":      len([]rune(text)),
		"word_count":      wordCount,
		"line_count":      len(strings.Split(text, "\n")),
		"avg_word_length": avg,
		"is_empty":        false,
	}
}

func transformTextHandler(_ context.Context, params map[string]any) (any, error) {
	operation, _ := params["operation"].(string)
	text, _ := params["text"].(string)
	var find, replaceWith *string
	if v, ok := params["find"].(string); ok {
		find = &v
	}
	if v, ok := params["replace_with"].(string); ok {
		replaceWith = &v
	}
	return TransformText(operation, text, find, replaceWith)
}

func analyzeTextHandler(_ context.Context, params map[string]any) (any, error) {
	text, _ := params["text"].(string)
	return AnalyzeText(text), nil
}

// RegisterText registers the transform_text and analyze_text tools.
func RegisterText(r *callwire.Registry) error {
	if err := r.Register(TransformTextDefinition, transformTextHandler); err != nil {
		return err
	}
	return r.Register(AnalyzeTextDefinition, analyzeTextHandler)
}
