package provider

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// schemaFor derives a Gemini response schema from a struct prototype.
// Field names follow json tags; fields tagged omitempty are optional.
func schemaFor(prototype any) (*genai.Schema, error) {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, fmt.Errorf("nil schema prototype")
	}
	return schemaForType(t, 0)
}

const maxSchemaDepth = 8

func schemaForType(t reflect.Type, depth int) (*genai.Schema, error) {
	if depth > maxSchemaDepth {
		return nil, fmt.Errorf("schema nesting exceeds %d levels", maxSchemaDepth)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return schemaForType(t.Elem(), depth)
	case reflect.String:
		return &genai.Schema{Type: genai.TypeString}, nil
	case reflect.Bool:
		return &genai.Schema{Type: genai.TypeBoolean}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &genai.Schema{Type: genai.TypeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return &genai.Schema{Type: genai.TypeNumber}, nil
	case reflect.Slice, reflect.Array:
		items, err := schemaForType(t.Elem(), depth+1)
		if err != nil {
			return nil, err
		}
		return &genai.Schema{Type: genai.TypeArray, Items: items}, nil
	case reflect.Map:
		return &genai.Schema{Type: genai.TypeObject}, nil
	case reflect.Interface:
		return &genai.Schema{Type: genai.TypeString}, nil
	case reflect.Struct:
		return schemaForStruct(t, depth)
	default:
		return nil, fmt.Errorf("unsupported schema field kind %s", t.Kind())
	}
}

func schemaForStruct(t reflect.Type, depth int) (*genai.Schema, error) {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		optional := false
		if tag, ok := field.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					optional = true
				}
			}
		}

		fs, err := schemaForType(field.Type, depth+1)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if desc, ok := field.Tag.Lookup("description"); ok {
			fs.Description = desc
		}

		schema.Properties[name] = fs
		if !optional {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema, nil
}
