package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/message"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

const DefaultModel = "gpt-4.1"

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, req generator.Request, onDelta generator.DeltaFunc) (generator.Turn, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               g.options.Model,
		Messages:            toMessages(req.System, req.Messages),
		Tools:               toTools(req.Tools),
		MaxCompletionTokens: g.options.MaxTokens,
		Stream:              true,
		StreamOptions: &openai.StreamOptions{
			IncludeUsage: true,
		},
	}

	if g.options.ThinkingBudget > 0 {
		chatReq.ReasoningEffort = effort(g.options.ThinkingBudget)
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return generator.Turn{}, fmt.Errorf("failed to open openai stream: %w", err)
	}
	defer stream.Close()

	var (
		text, reasoning strings.Builder
		calls           = map[int]*openai.ToolCall{}
		order           []int
		finish          string
		usage           generator.Usage
	)

	emit := func(kind, s string) error {
		if len(s) == 0 || onDelta == nil {
			return nil
		}
		return onDelta(generator.Delta{Kind: kind, Text: s})
	}

	for {
		rsp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return generator.Turn{}, fmt.Errorf("failed to read openai stream: %w", err)
		}

		if rsp.Usage != nil {
			usage = generator.Usage{
				PromptTokens:     rsp.Usage.PromptTokens,
				CompletionTokens: rsp.Usage.CompletionTokens,
			}
		}

		for _, choice := range rsp.Choices {
			delta := choice.Delta

			reasoning.WriteString(delta.ReasoningContent)
			if err := emit(generator.DeltaReasoning, delta.ReasoningContent); err != nil {
				return generator.Turn{}, err
			}

			text.WriteString(delta.Content)
			if err := emit(generator.DeltaText, delta.Content); err != nil {
				return generator.Turn{}, err
			}

			for _, tc := range delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}

				call, ok := calls[idx]
				if !ok {
					call = &openai.ToolCall{Type: openai.ToolTypeFunction}
					calls[idx] = call
					order = append(order, idx)
				}

				if len(tc.ID) > 0 {
					call.ID = tc.ID
				}
				if len(tc.Function.Name) > 0 {
					call.Function.Name = tc.Function.Name
				}
				call.Function.Arguments += tc.Function.Arguments
			}

			if len(choice.FinishReason) > 0 {
				finish = string(choice.FinishReason)
			}
		}
	}

	turn := generator.Turn{
		Text:         text.String(),
		Reasoning:    reasoning.String(),
		FinishReason: finishReason(finish),
		Usage:        usage,
	}

	native := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: turn.Text,
	}

	for _, idx := range order {
		call := calls[idx]

		args, err := generator.ParseArguments([]byte(call.Function.Arguments))
		if err != nil {
			return generator.Turn{}, fmt.Errorf("invalid arguments for tool %s: %w", call.Function.Name, err)
		}

		turn.ToolCalls = append(turn.ToolCalls, generator.ToolCall{
			Id:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})

		native.ToolCalls = append(native.ToolCalls, *call)
	}

	turn.Native = native

	return turn, nil
}

func effort(budget int) string {
	switch {
	case budget <= 2048:
		return "low"
	case budget <= 8192:
		return "medium"
	default:
		return "high"
	}
}

func finishReason(reason string) string {
	switch reason {
	case "stop":
		return generator.FinishStop
	case "length":
		return generator.FinishLength
	case "tool_calls", "function_call":
		return generator.FinishToolCalls
	case "content_filter":
		return generator.FinishContentFilter
	case "":
		return generator.FinishUnknown
	default:
		return generator.FinishOther
	}
}

func toMessages(system string, msgs []message.Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage

	if len(system) > 0 {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range msgs {
		switch msg.Role {
		case message.RoleUser:
			out = append(out, userMessage(msg))
		case message.RoleAssistant:
			native, ok := msg.Native.(openai.ChatCompletionMessage)
			if !ok {
				native = openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: msg.Text(),
				}
				for _, inv := range msg.ToolInvocations() {
					if inv.State != message.StateResult {
						continue
					}
					args, _ := json.Marshal(inv.Args)
					native.ToolCalls = append(native.ToolCalls, openai.ToolCall{
						ID:   inv.ToolCallId,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      inv.ToolName,
							Arguments: string(args),
						},
					})
				}
			}

			if len(native.Content) == 0 && len(native.ToolCalls) == 0 {
				continue
			}

			out = append(out, native)

			for _, inv := range msg.ToolInvocations() {
				if inv.State != message.StateResult {
					continue
				}
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    generator.ResultText(inv.Result),
					ToolCallID: inv.ToolCallId,
				})
			}
		}
	}

	return out
}

func userMessage(msg message.Message) openai.ChatCompletionMessage {
	hasImage := false
	for _, part := range msg.Content {
		if part.Type == message.PartTypeImage {
			hasImage = true
			break
		}
	}

	if !hasImage {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: msg.Text(),
		}
	}

	m := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
	}

	for _, part := range msg.Content {
		switch part.Type {
		case message.PartTypeText:
			if len(part.Text) > 0 {
				m.MultiContent = append(m.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			}
		case message.PartTypeImage:
			m.MultiContent = append(m.MultiContent, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: part.Image},
			})
		}
	}

	return m
}

func toTools(specs []toolhandler.ToolSpec) []openai.Tool {
	var out []openai.Tool
	for _, spec := range specs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.InputSchema,
			},
		})
	}
	return out
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = DefaultModel
	}

	g := &openAIGenerator{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)

	if len(options.BaseUrl) > 0 {
		cfg.BaseURL = options.BaseUrl
	}

	if options.Client != nil {
		cfg.HTTPClient = options.Client
	}

	g.client = openai.NewClientWithConfig(cfg)

	return g
}
