package tools

import (
	"context"
	"fmt"

	"github.com/callwire/callwire"
)

// CountdownDefinition describes the countdown tool, the bundled
// demonstration of multi-chunk streaming: one in_progress chunk per step,
// then a final summary.
var CountdownDefinition = callwire.FunctionDefinition{
	Name:        "countdown",
	Description: "Count down from a number, emitting one chunk per step",
	Parameters: callwire.ParameterSchema{
		Type: callwire.TypeObject,
		Properties: map[string]callwire.PropertySchema{
			"from": {
				Type:        callwire.TypeInteger,
				Description: "Number to count down from",
			},
		},
		Required: []string{"from"},
	},
}

func countdownHandler(ctx context.Context, params map[string]any, emit func(any) error) (any, error) {
	from, _ := number(params["from"])
	n := int(from)
	if n < 0 {
		return nil, fmt.Errorf("cannot count down from a negative number: %d", n)
	}
	for i := n; i > 0; i-- {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := emit(map[string]any{"remaining": i}); err != nil {
			return nil, err
		}
	}
	return map[string]any{"finished": true, "steps": n}, nil
}

// RegisterCountdown registers the countdown streaming tool.
func RegisterCountdown(r *callwire.Registry) error {
	return r.RegisterStream(CountdownDefinition, countdownHandler)
}
