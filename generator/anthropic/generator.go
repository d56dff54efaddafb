package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/message"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

const DefaultModel = "claude-sonnet-4-0"

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, req generator.Request, onDelta generator.DeltaFunc) (generator.Turn, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		Messages:  toMessages(req.Messages),
		Tools:     toTools(req.Tools),
	}

	if len(req.System) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	if g.options.ThinkingBudget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(g.options.ThinkingBudget))
	}

	stream := g.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	msg := anthropic.Message{}

	for stream.Next() {
		event := stream.Current()

		if err := msg.Accumulate(event); err != nil {
			return generator.Turn{}, fmt.Errorf("failed to accumulate anthropic stream: %w", err)
		}

		ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok || onDelta == nil {
			continue
		}

		var err error
		switch delta := ev.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			err = onDelta(generator.Delta{Kind: generator.DeltaText, Text: delta.Text})
		case anthropic.ThinkingDelta:
			err = onDelta(generator.Delta{Kind: generator.DeltaReasoning, Text: delta.Thinking})
		}
		if err != nil {
			return generator.Turn{}, err
		}
	}

	if err := stream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return generator.Turn{}, fmt.Errorf("anthropic api error %d: %w", apiErr.StatusCode, err)
		}
		return generator.Turn{}, fmt.Errorf("failed to stream anthropic response: %w", err)
	}

	return toTurn(msg)
}

func toTurn(msg anthropic.Message) (generator.Turn, error) {
	turn := generator.Turn{
		FinishReason: finishReason(string(msg.StopReason)),
		Usage: generator.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
		Native: msg.ToParam(),
	}

	var text, reasoning strings.Builder

	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ThinkingBlock:
			reasoning.WriteString(b.Thinking)
		case anthropic.ToolUseBlock:
			args, err := generator.ParseArguments(b.Input)
			if err != nil {
				return generator.Turn{}, fmt.Errorf("invalid arguments for tool %s: %w", b.Name, err)
			}
			turn.ToolCalls = append(turn.ToolCalls, generator.ToolCall{
				Id:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}

	turn.Text = text.String()
	turn.Reasoning = reasoning.String()

	return turn, nil
}

func finishReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence", "pause_turn":
		return generator.FinishStop
	case "max_tokens":
		return generator.FinishLength
	case "tool_use":
		return generator.FinishToolCalls
	case "refusal":
		return generator.FinishContentFilter
	case "":
		return generator.FinishUnknown
	default:
		return generator.FinishOther
	}
}

func toMessages(msgs []message.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	push := func(m anthropic.MessageParam) {
		if len(m.Content) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content = append(out[n-1].Content, m.Content...)
			return
		}
		out = append(out, m)
	}

	for _, msg := range msgs {
		switch msg.Role {
		case message.RoleUser:
			var blocks []anthropic.ContentBlockParamUnion
			for _, part := range msg.Content {
				switch part.Type {
				case message.PartTypeText:
					if len(part.Text) > 0 {
						blocks = append(blocks, anthropic.NewTextBlock(part.Text))
					}
				case message.PartTypeImage:
					blocks = append(blocks, anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: part.Image}))
				}
			}
			push(anthropic.NewUserMessage(blocks...))
		case message.RoleAssistant:
			var results []anthropic.ContentBlockParamUnion

			native, ok := msg.Native.(anthropic.MessageParam)
			if !ok {
				var blocks []anthropic.ContentBlockParamUnion
				for _, part := range msg.Content {
					switch {
					case part.Type == message.PartTypeText && len(part.Text) > 0:
						blocks = append(blocks, anthropic.NewTextBlock(part.Text))
					case part.ToolInvocation != nil && part.ToolInvocation.State == message.StateResult:
						inv := part.ToolInvocation
						args := inv.Args
						if args == nil {
							args = map[string]any{}
						}
						blocks = append(blocks, anthropic.NewToolUseBlock(inv.ToolCallId, args, inv.ToolName))
					}
				}
				native = anthropic.NewAssistantMessage(blocks...)
			}

			for _, inv := range msg.ToolInvocations() {
				if inv.State != message.StateResult {
					continue
				}
				results = append(results, anthropic.NewToolResultBlock(inv.ToolCallId, generator.ResultText(inv.Result), false))
			}

			push(native)
			push(anthropic.NewUserMessage(results...))
		}
	}

	return out
}

func toTools(specs []toolhandler.ToolSpec) []anthropic.ToolUnionParam {
	var out []anthropic.ToolUnionParam

	for _, spec := range specs {
		tool := anthropic.ToolParam{
			Name:        spec.Name,
			Description: anthropic.String(spec.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: spec.InputSchema["properties"],
				Required:   required(spec.InputSchema),
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}

	return out
}

func required(schema map[string]any) []string {
	switch v := schema["required"].(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = DefaultModel
	}

	g := &anthropicGenerator{
		options: options,
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
	}

	if len(options.BaseUrl) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.BaseUrl))
	}

	if options.Client != nil {
		clientOpts = append(clientOpts, anthropicopt.WithHTTPClient(options.Client))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
