package callwire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calcDef() FunctionDefinition {
	return FunctionDefinition{
		Name:        "calculator",
		Description: "Perform basic arithmetic calculations",
		Parameters: ParameterSchema{
			Type: TypeObject,
			Properties: map[string]PropertySchema{
				"operation": {
					Type:        TypeString,
					Description: "The operation to perform",
					Enum:        []any{"add", "subtract", "multiply", "divide"},
				},
				"a": {Type: TypeNumber, Description: "First operand"},
				"b": {Type: TypeNumber, Description: "Second operand"},
				"precision": {
					Type:        TypeInteger,
					Description: "Decimal places",
					Default:     float64(2),
				},
			},
			Required: []string{"operation", "a"},
		},
	}
}

func TestValidateCall_FillsDefaults(t *testing.T) {
	params, err := ValidateCall(calcDef(), map[string]any{
		"operation": "add",
		"a":         float64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, float64(2), params["precision"])
	assert.Equal(t, "add", params["operation"])
}

func TestValidateCall_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"operation": "add", "a": float64(1)}
	_, err := ValidateCall(calcDef(), in)
	require.NoError(t, err)
	assert.NotContains(t, in, "precision")
}

func TestValidateCall_MissingRequired(t *testing.T) {
	_, err := ValidateCall(calcDef(), map[string]any{"a": float64(1)})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)
	require.True(t, IsValidationError(err))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"operation"}, verr.Missing)
}

func TestValidateCall_UnknownField(t *testing.T) {
	_, err := ValidateCall(calcDef(), map[string]any{
		"operation": "add",
		"a":         float64(1),
		"bogus":     true,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"bogus"}, verr.Unknown)
}

func TestValidateCall_TypeMismatch(t *testing.T) {
	_, err := ValidateCall(calcDef(), map[string]any{
		"operation": "add",
		"a":         "one",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.TypeMismatch, 1)
	assert.Equal(t, "a", verr.TypeMismatch[0].Field)
	assert.Equal(t, TypeNumber, verr.TypeMismatch[0].Want)
	assert.Equal(t, TypeString, verr.TypeMismatch[0].Got)
}

func TestValidateCall_EnumViolation(t *testing.T) {
	_, err := ValidateCall(calcDef(), map[string]any{
		"operation": "modulo",
		"a":         float64(1),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.EnumViolation, 1)
	assert.Equal(t, "operation", verr.EnumViolation[0].Field)
	assert.Equal(t, "modulo", verr.EnumViolation[0].Value)
}

func TestValidateCall_IntegerAcceptsWholeFloat(t *testing.T) {
	_, err := ValidateCall(calcDef(), map[string]any{
		"operation": "add",
		"a":         float64(1),
		"precision": float64(3),
	})
	require.NoError(t, err)

	_, err = ValidateCall(calcDef(), map[string]any{
		"operation": "add",
		"a":         float64(1),
		"precision": 3.5,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.TypeMismatch, 1)
	assert.Equal(t, "precision", verr.TypeMismatch[0].Field)
}

func TestValidateCall_NestedObject(t *testing.T) {
	def := FunctionDefinition{
		Name:        "nested",
		Description: "Nested object parameters",
		Parameters: ParameterSchema{
			Type: TypeObject,
			Properties: map[string]PropertySchema{
				"filter": {
					Type:        TypeObject,
					Description: "Filter spec",
					Properties: map[string]PropertySchema{
						"field": {Type: TypeString, Description: "Field name"},
						"limit": {Type: TypeInteger, Description: "Max results"},
					},
					Required: []string{"field"},
				},
			},
			Required: []string{"filter"},
		},
	}

	_, err := ValidateCall(def, map[string]any{
		"filter": map[string]any{"limit": float64(3)},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"filter.field"}, verr.Missing)

	_, err = ValidateCall(def, map[string]any{
		"filter": map[string]any{"field": "name", "extra": true},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"filter.extra"}, verr.Unknown)
}

func TestValidateCall_ArrayItems(t *testing.T) {
	def := FunctionDefinition{
		Name:        "batch",
		Description: "Array parameters",
		Parameters: ParameterSchema{
			Type: TypeObject,
			Properties: map[string]PropertySchema{
				"values": {
					Type:        TypeArray,
					Description: "Numbers",
					Items:       &PropertySchema{Type: TypeNumber},
				},
			},
			Required: []string{"values"},
		},
	}
	_, err := ValidateCall(def, map[string]any{
		"values": []any{float64(1), "two"},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.TypeMismatch, 1)
	assert.Equal(t, "values[1]", verr.TypeMismatch[0].Field)
}

func TestValidateCall_Idempotent(t *testing.T) {
	params := map[string]any{"operation": "add", "a": float64(1)}
	first, err1 := ValidateCall(calcDef(), params)
	second, err2 := ValidateCall(calcDef(), params)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)

	bad := map[string]any{"a": float64(1)}
	_, errA := ValidateCall(calcDef(), bad)
	_, errB := ValidateCall(calcDef(), bad)
	assert.Equal(t, errA.Error(), errB.Error())
}

func TestValidateDefinition(t *testing.T) {
	require.NoError(t, ValidateDefinition(calcDef()))

	bad := calcDef()
	bad.Name = ""
	require.Error(t, ValidateDefinition(bad))

	bad = calcDef()
	bad.Parameters.Type = TypeString
	err := ValidateDefinition(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object schema")

	bad = calcDef()
	bad.Parameters.Required = append(bad.Parameters.Required, "ghost")
	require.Error(t, ValidateDefinition(bad))

	bad = calcDef()
	bad.Parameters.Properties["weird"] = PropertySchema{Type: "tuple"}
	require.Error(t, ValidateDefinition(bad))
}

func TestValidationError_ErrorDetail(t *testing.T) {
	_, err := ValidateCall(calcDef(), map[string]any{"bogus": true})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	detail := verr.ErrorDetail()
	assert.Equal(t, KindInvalidParameters, detail.Kind)
	assert.Contains(t, detail.Detail, "missing_fields")
	assert.Contains(t, detail.Detail, "unknown_fields")
}
