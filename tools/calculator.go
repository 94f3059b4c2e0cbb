package tools

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/callwire/callwire"
)

// CalculatorDefinition describes the calculator tool.
var CalculatorDefinition = callwire.FunctionDefinition{
	Name:        "calculator",
	Description: "Perform basic arithmetic calculations",
	Parameters: callwire.ParameterSchema{
		Type: callwire.TypeObject,
		Properties: map[string]callwire.PropertySchema{
			"operation": {
				Type:        callwire.TypeString,
				Description: "The operation to perform",
				Enum:        []any{"add", "subtract", "multiply", "divide", "power", "sqrt", "log"},
			},
			"a": {
				Type:        callwire.TypeNumber,
				Description: "First operand",
			},
			"b": {
				Type:        callwire.TypeNumber,
				Description: "Second operand (required for all operations except sqrt)",
			},
		},
		Required: []string{"operation", "a"},
	},
}

// Calculate performs one arithmetic operation. b is nil for unary sqrt.
func Calculate(operation string, a float64, b *float64) (float64, error) {
	binary := map[string]func(x, y float64) float64{
		"add":      func(x, y float64) float64 { return x + y },
		"subtract": func(x, y float64) float64 { return x - y },
		"multiply": func(x, y float64) float64 { return x * y },
		"divide":   func(x, y float64) float64 { return x / y },
		"power":    math.Pow,
	}
	if op, ok := binary[operation]; ok {
		if b == nil {
			return 0, fmt.Errorf("second operand is required for operation '%s'", operation)
		}
		if operation == "divide" && *b == 0 {
			return 0, errors.New("division by zero is not allowed")
		}
		return op(a, *b), nil
	}
	switch operation {
	case "sqrt":
		if a < 0 {
			return 0, errors.New("cannot calculate square root of a negative number")
		}
		return math.Sqrt(a), nil
	case "log":
		if a <= 0 {
			return 0, errors.New("cannot calculate logarithm of a non-positive number")
		}
		if b == nil || *b <= 0 {
			return 0, errors.New("base must be a positive number")
		}
		return math.Log(a) / math.Log(*b), nil
	}
	return 0, fmt.Errorf("unknown operation: %s", operation)
}

func calculatorHandler(_ context.Context, params map[string]any) (any, error) {
	operation, _ := params["operation"].(string)
	a, _ := number(params["a"])
	var b *float64
	if v, ok := number(params["b"]); ok {
		b = &v
	}
	return Calculate(operation, a, b)
}

// RegisterCalculator registers the calculator tool.
func RegisterCalculator(r *callwire.Registry) error {
	return r.Register(CalculatorDefinition, calculatorHandler)
}

// number converts a JSON-decoded numeric value.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
