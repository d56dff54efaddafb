package google

import (
	"github.com/google/generative-ai-go/genai"
	getsafe "github.com/w-h-a/rio/util/get_safe"
)

// toSchema maps the JSON Schema subset the tools use onto Gemini's schema.
func toSchema(in map[string]any) *genai.Schema {
	if in == nil {
		return nil
	}

	s := &genai.Schema{}

	switch t := in["type"].(type) {
	case string:
		s.Type = schemaType(t)
	case []any:
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				s.Nullable = true
				continue
			}
			if s.Type == genai.TypeUnspecified {
				s.Type = schemaType(name)
			}
		}
	}

	s.Description = getsafe.String(in, "description")

	if enum, ok := in["enum"].([]any); ok {
		for _, v := range enum {
			if e, ok := v.(string); ok {
				s.Enum = append(s.Enum, e)
			}
		}
		if len(s.Enum) > 0 {
			s.Format = "enum"
		}
	}

	if props := getsafe.Map(in, "properties"); props != nil {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if child, ok := v.(map[string]any); ok {
				s.Properties[name] = toSchema(child)
			}
		}
		if s.Type == genai.TypeUnspecified {
			s.Type = genai.TypeObject
		}
	}

	if items := getsafe.Map(in, "items"); items != nil {
		s.Items = toSchema(items)
	}

	switch req := in["required"].(type) {
	case []string:
		s.Required = req
	case []any:
		for _, v := range req {
			if name, ok := v.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}

	return s
}

func schemaType(name string) genai.Type {
	switch name {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
