package toolhandler

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type ToolRequest struct {
	Id        string         `json:"id"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResponse is what a tool hands back to the model. IsError marks a
// failure payload that is still fed to the model as the tool's result.
type ToolResponse struct {
	Content  any               `json:"content"`
	IsError  bool              `json:"is_error,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func SchemaFor(v any) map[string]any {
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}

	bs, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return map[string]any{"type": "object"}
	}

	var schema map[string]any
	if err := json.Unmarshal(bs, &schema); err != nil {
		return map[string]any{"type": "object"}
	}

	delete(schema, "$schema")

	return schema
}

func DecodeArguments(args map[string]any, v any) error {
	bs, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(bs, v)
}
