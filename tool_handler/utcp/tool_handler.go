package utcp

import (
	"context"
	"encoding/json"
	"errors"

	toolhandler "github.com/w-h-a/rio/tool_handler"
)

type utcpToolHandler struct {
	options  toolhandler.Options
	client   Caller
	toolName string
	spec     toolhandler.ToolSpec
}

func (th *utcpToolHandler) Spec() toolhandler.ToolSpec {
	return th.spec
}

func (th *utcpToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	if th.client == nil {
		return toolhandler.ToolResponse{}, errors.New("utcp client is not configured")
	}

	raw, err := th.client.CallTool(ctx, th.toolName, req.Arguments)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	// remote tools often answer with JSON text; keep it structured for the model
	content := raw
	if s, ok := raw.(string); ok && json.Valid([]byte(s)) {
		content = json.RawMessage(s)
	}

	return toolhandler.ToolResponse{
		Content: content,
		Metadata: map[string]string{
			"source": "utcp",
			"tool":   th.toolName,
		},
	}, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &utcpToolHandler{
		options: options,
	}

	if client, ok := UtcpClientFrom(options.Context); ok {
		th.client = client
	}

	if name, ok := ToolNameFrom(options.Context); ok {
		th.toolName = name
	}

	if spec, ok := ToolSpecFrom(options.Context); ok {
		th.spec = spec
	}

	if th.spec.Name == "" {
		th.spec.Name = th.toolName
	}

	return th
}
