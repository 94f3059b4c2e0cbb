package callwire

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
)

// ValidateDefinition checks that a FunctionDefinition is usable: non-empty
// name and description, an object parameter schema with at least one
// property, known property types, and enum/default values consistent with
// their declared type.
func ValidateDefinition(def FunctionDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("function name must not be empty")
	}
	if def.Description == "" {
		return fmt.Errorf("function %q: description must not be empty", def.Name)
	}
	if def.Parameters.Type != TypeObject {
		return fmt.Errorf("function %q: parameters must be an object schema, got %q", def.Name, def.Parameters.Type)
	}
	if len(def.Parameters.Properties) == 0 {
		return fmt.Errorf("function %q: parameters must declare at least one property", def.Name)
	}
	for name, prop := range def.Parameters.Properties {
		if err := checkPropertySchema(name, prop); err != nil {
			return fmt.Errorf("function %q: %w", def.Name, err)
		}
	}
	for _, req := range def.Parameters.Required {
		if _, ok := def.Parameters.Properties[req]; !ok {
			return fmt.Errorf("function %q: required property %q is not declared", def.Name, req)
		}
	}
	return nil
}

func checkPropertySchema(name string, prop PropertySchema) error {
	switch prop.Type {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray:
	default:
		return fmt.Errorf("property %q: unknown type %q", name, prop.Type)
	}
	for sub, nested := range prop.Properties {
		if err := checkPropertySchema(name+"."+sub, nested); err != nil {
			return err
		}
	}
	if prop.Items != nil {
		if err := checkPropertySchema(name+"[]", *prop.Items); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCall checks params against def's parameter schema and returns the
// validated parameter map. Properties that are absent but declare a default
// are filled in before checking, so handlers always see defaulted values.
// The input map is never mutated. Validation is pure; it never invokes a
// handler, and validating the same pair twice yields identical results.
func ValidateCall(def FunctionDefinition, params map[string]any) (map[string]any, error) {
	validated := make(map[string]any, len(params))
	maps.Copy(validated, params)

	// Fill defaults before any checks so a defaulted value is type-checked too.
	for name, prop := range def.Parameters.Properties {
		if _, present := validated[name]; !present && prop.Default != nil {
			validated[name] = prop.Default
		}
	}

	verr := &ValidationError{}
	for _, req := range def.Parameters.Required {
		if _, present := validated[req]; !present {
			verr.Missing = append(verr.Missing, req)
		}
	}
	for name, value := range validated {
		prop, declared := def.Parameters.Properties[name]
		if !declared {
			verr.Unknown = append(verr.Unknown, name)
			continue
		}
		checkValue(name, prop, value, verr)
	}
	slices.Sort(verr.Missing)
	slices.Sort(verr.Unknown)

	if !verr.empty() {
		return nil, verr
	}
	return validated, nil
}

func checkValue(field string, prop PropertySchema, value any, verr *ValidationError) {
	if value == nil {
		// Explicit null for an optional field passes; required presence is
		// handled separately and treats null as present.
		return
	}
	if got, ok := matchesType(prop.Type, value); !ok {
		verr.TypeMismatch = append(verr.TypeMismatch, FieldType{Field: field, Want: prop.Type, Got: got})
		return
	}
	if len(prop.Enum) > 0 && !enumContains(prop.Enum, value) {
		verr.EnumViolation = append(verr.EnumViolation, FieldValue{Field: field, Value: value})
		return
	}
	if prop.Type == TypeObject && len(prop.Properties) > 0 {
		nested, _ := value.(map[string]any)
		for _, req := range prop.Required {
			if _, present := nested[req]; !present {
				verr.Missing = append(verr.Missing, field+"."+req)
			}
		}
		for name, sub := range nested {
			subProp, declared := prop.Properties[name]
			if !declared {
				verr.Unknown = append(verr.Unknown, field+"."+name)
				continue
			}
			checkValue(field+"."+name, subProp, sub, verr)
		}
	}
	if prop.Type == TypeArray && prop.Items != nil {
		items, _ := value.([]any)
		for i, item := range items {
			checkValue(fmt.Sprintf("%s[%d]", field, i), *prop.Items, item, verr)
		}
	}
}

// matchesType reports whether value's runtime type satisfies the declared
// JSON Schema type. Values come either from encoding/json (float64, string,
// bool, map, slice) or from Go callers (native ints, typed slices), so both
// shapes are accepted. The second return is the observed type name for
// error reporting.
func matchesType(want string, value any) (string, bool) {
	switch want {
	case TypeString:
		_, ok := value.(string)
		return jsonTypeName(value), ok
	case TypeBoolean:
		_, ok := value.(bool)
		return jsonTypeName(value), ok
	case TypeNumber:
		return jsonTypeName(value), isNumeric(value)
	case TypeInteger:
		if f, ok := asFloat(value); ok {
			return jsonTypeName(value), f == math.Trunc(f)
		}
		return jsonTypeName(value), false
	case TypeObject:
		_, ok := value.(map[string]any)
		return jsonTypeName(value), ok
	case TypeArray:
		rv := reflect.ValueOf(value)
		return jsonTypeName(value), rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	}
	return jsonTypeName(value), false
}

func isNumeric(value any) bool {
	_, ok := asFloat(value)
	return ok
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case float64, float32:
		return TypeNumber
	case int, int32, int64:
		return TypeInteger
	case map[string]any:
		return TypeObject
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			return TypeArray
		}
		return rv.Kind().String()
	}
}

// enumContains matches by normalized numeric value so 2 and 2.0 compare
// equal, matching JSON semantics.
func enumContains(enum []any, value any) bool {
	if vf, ok := asFloat(value); ok {
		for _, e := range enum {
			if ef, ok := asFloat(e); ok && ef == vf {
				return true
			}
		}
		return false
	}
	for _, e := range enum {
		if reflect.DeepEqual(e, value) {
			return true
		}
	}
	return false
}
