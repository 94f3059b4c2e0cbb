package callwire

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// DefinitionFor derives a FunctionDefinition from A's struct fields:
// json tags name the properties, field types map to JSON Schema types, and
// `description`/`enum` struct tags enrich the generated properties. The
// result is exactly what an equivalent manual definition would be, so
// registration through this path and through Register are interchangeable.
func DefinitionFor[A any](name, description string) (FunctionDefinition, error) {
	schema, err := jsonschema.For[A](nil)
	if err != nil {
		return FunctionDefinition{}, fmt.Errorf("function %q: schema generation: %w", name, err)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return FunctionDefinition{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return FunctionDefinition{}, err
	}
	normalizeTypes(raw)
	data, err = json.Marshal(raw)
	if err != nil {
		return FunctionDefinition{}, err
	}
	var params ParameterSchema
	if err := json.Unmarshal(data, &params); err != nil {
		return FunctionDefinition{}, err
	}
	enrichFromStructTags(&params, reflect.TypeOf(*new(A)))
	def := FunctionDefinition{Name: name, Description: description, Parameters: params}
	if err := ValidateDefinition(def); err != nil {
		return FunctionDefinition{}, err
	}
	return def, nil
}

// RegisterFunc registers a typed function: the definition is derived from A
// via DefinitionFor, and validated parameters are decoded into A before fn
// runs. Behaviorally equivalent to a manual Register with the same schema.
func RegisterFunc[A any, R any](r *Registry, name, description string, fn func(ctx context.Context, args A) (R, error)) error {
	def, err := DefinitionFor[A](name, description)
	if err != nil {
		return err
	}
	return r.Register(def, func(ctx context.Context, params map[string]any) (any, error) {
		args, err := decodeArgs[A](params)
		if err != nil {
			return nil, err
		}
		return fn(ctx, args)
	})
}

// RegisterStreamFunc is RegisterFunc for handlers that emit intermediate
// results. Each emit becomes one in_progress chunk during streamed
// execution.
func RegisterStreamFunc[A any, R any](r *Registry, name, description string, fn func(ctx context.Context, args A, emit func(any) error) (R, error)) error {
	def, err := DefinitionFor[A](name, description)
	if err != nil {
		return err
	}
	return r.RegisterStream(def, func(ctx context.Context, params map[string]any, emit func(any) error) (any, error) {
		args, err := decodeArgs[A](params)
		if err != nil {
			return nil, err
		}
		return fn(ctx, args, emit)
	})
}

func decodeArgs[A any](params map[string]any) (A, error) {
	var args A
	data, err := json.Marshal(params)
	if err != nil {
		return args, err
	}
	if err := json.Unmarshal(data, &args); err != nil {
		return args, err
	}
	return args, nil
}

// normalizeTypes rewrites nodes where the generator emitted a type list
// (e.g. ["null","string"] for pointer fields) into the single non-null
// type, and drops generator bookkeeping keys that ParameterSchema does not
// model.
func normalizeTypes(node map[string]any) {
	delete(node, "$schema")
	delete(node, "$id")
	delete(node, "additionalProperties")
	for _, key := range []string{"type", "types"} {
		list, ok := node[key].([]any)
		if !ok {
			continue
		}
		for _, t := range list {
			if s, ok := t.(string); ok && s != "null" {
				node["type"] = s
				break
			}
		}
	}
	delete(node, "types")
	for _, val := range node {
		switch v := val.(type) {
		case map[string]any:
			normalizeTypes(v)
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					normalizeTypes(m)
				}
			}
		}
	}
}

// enrichFromStructTags copies description and enum struct tags from A's
// root-level fields into the generated properties, keyed by json tag name.
func enrichFromStructTags(params *ParameterSchema, typ reflect.Type) {
	if typ == nil {
		return
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		prop, ok := params.Properties[jsonTag]
		if !ok {
			continue
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop.Description = desc
		}
		if enumStr := field.Tag.Get("enum"); enumStr != "" {
			parts := strings.Split(enumStr, ",")
			enum := make([]any, len(parts))
			for j, p := range parts {
				enum[j] = strings.TrimSpace(p)
			}
			prop.Enum = enum
		}
		params.Properties[jsonTag] = prop
	}
}
