package chart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w-h-a/rio/chart"
	"github.com/w-h-a/rio/prompt"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

const Name = "render_chart"

type Input struct {
	Spec chart.RawSpec `json:"spec" jsonschema:"required" jsonschema_description:"Vega-Lite style specification"`
}

type Result struct {
	Spec chart.Spec `json:"spec"`
}

type chartToolHandler struct {
	options toolhandler.Options
	spec    toolhandler.ToolSpec
}

func (th *chartToolHandler) Spec() toolhandler.ToolSpec {
	return th.spec
}

// Invoke returns an error for malformed specs. The caller turns it into an
// error result the model can explain.
func (th *chartToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	var in Input
	if err := toolhandler.DecodeArguments(req.Arguments, &in); err != nil {
		return toolhandler.ToolResponse{}, fmt.Errorf("invalid %s arguments: %w", Name, err)
	}

	spec, err := chart.Normalize(in.Spec)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	if spec.Title == "" {
		slog.WarnContext(ctx, "chart should include a title for better context", "tool_call_id", req.Id)
	}

	if spec.Description == "" {
		slog.WarnContext(ctx, "chart should include a description for better accessibility", "tool_call_id", req.Id)
	}

	rsp := toolhandler.ToolResponse{
		Content: Result{Spec: spec},
		Metadata: map[string]string{
			"mark":   spec.Mark,
			"points": fmt.Sprint(len(spec.Data.Values)),
		},
	}

	if fields, ok := spec.MultiSeries(); ok {
		slog.InfoContext(ctx, "multi-series chart detected", "fields", fields)
		rsp.Metadata["series"] = strings.Join(fields, ",")
	}

	return rsp, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	return &chartToolHandler{
		options: options,
		spec: toolhandler.ToolSpec{
			Name:        Name,
			Description: prompt.Chart,
			InputSchema: toolhandler.SchemaFor(&Input{}),
		},
	}
}
