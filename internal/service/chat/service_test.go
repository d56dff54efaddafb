package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/message"
	"github.com/w-h-a/rio/metrics"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

type scriptedTurn struct {
	deltas []generator.Delta
	turn   generator.Turn
	err    error
}

type fakeGenerator struct {
	script   []scriptedTurn
	requests []generator.Request
}

func (g *fakeGenerator) Generate(ctx context.Context, req generator.Request, onDelta generator.DeltaFunc) (generator.Turn, error) {
	g.requests = append(g.requests, req)

	next := g.script[0]
	if len(g.script) > 1 {
		g.script = g.script[1:]
	}

	for _, d := range next.deltas {
		if err := onDelta(d); err != nil {
			return generator.Turn{}, err
		}
	}

	return next.turn, next.err
}

type fakeTool struct {
	name  string
	calls []map[string]any
	fn    func(args map[string]any) (toolhandler.ToolResponse, error)
}

func (f *fakeTool) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{Name: f.name, Description: f.name, InputSchema: map[string]any{"type": "object"}}
}

func (f *fakeTool) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	f.calls = append(f.calls, req.Arguments)
	return f.fn(req.Arguments)
}

type event struct {
	kind    string
	text    string
	id      string
	payload any
	reason  string
	usage   generator.Usage
}

type recordingSink struct {
	events []event
}

func (r *recordingSink) StartStep(messageId string) error {
	r.events = append(r.events, event{kind: "start", id: messageId})
	return nil
}

func (r *recordingSink) Text(text string) error {
	r.events = append(r.events, event{kind: "text", text: text})
	return nil
}

func (r *recordingSink) Reasoning(text string) error {
	r.events = append(r.events, event{kind: "reasoning", text: text})
	return nil
}

func (r *recordingSink) ToolCall(call generator.ToolCall) error {
	r.events = append(r.events, event{kind: "call", id: call.Id, text: call.Name, payload: call.Arguments})
	return nil
}

func (r *recordingSink) ToolResult(toolCallId string, result any) error {
	r.events = append(r.events, event{kind: "result", id: toolCallId, payload: result})
	return nil
}

func (r *recordingSink) FinishStep(reason string, usage generator.Usage) error {
	r.events = append(r.events, event{kind: "step-finish", reason: reason, usage: usage})
	return nil
}

func (r *recordingSink) Finish(reason string, usage generator.Usage) error {
	r.events = append(r.events, event{kind: "finish", reason: reason, usage: usage})
	return nil
}

func (r *recordingSink) kinds() []string {
	kinds := make([]string, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.kind)
	}
	return kinds
}

func userSays(text string) []message.Message {
	return []message.Message{message.NewText(message.RoleUser, text)}
}

func TestRespondText(t *testing.T) {
	gen := &fakeGenerator{script: []scriptedTurn{{
		deltas: []generator.Delta{
			{Kind: generator.DeltaReasoning, Text: "hmm"},
			{Kind: generator.DeltaText, Text: "Hel"},
			{Kind: generator.DeltaText, Text: "lo"},
		},
		turn: generator.Turn{Text: "Hello", FinishReason: generator.FinishStop, Usage: generator.Usage{PromptTokens: 10, CompletionTokens: 2}},
	}}}

	sink := &recordingSink{}
	svc := New(gen, nil, 0, "You are Rio.", nil)

	require.NoError(t, svc.Respond(context.Background(), userSays("hi"), sink))

	require.Equal(t, []string{"start", "reasoning", "text", "text", "step-finish", "finish"}, sink.kinds())
	require.Equal(t, generator.FinishStop, sink.events[5].reason)
	require.Equal(t, generator.Usage{PromptTokens: 10, CompletionTokens: 2}, sink.events[5].usage)
	require.Equal(t, "You are Rio.", gen.requests[0].System)
}

func TestRespondToolLoop(t *testing.T) {
	db := &fakeTool{name: "query_database", fn: func(args map[string]any) (toolhandler.ToolResponse, error) {
		return toolhandler.ToolResponse{Content: map[string]any{"rowCount": 1}}, nil
	}}
	chart := &fakeTool{name: "render_chart", fn: func(args map[string]any) (toolhandler.ToolResponse, error) {
		return toolhandler.ToolResponse{}, errors.New("Chart spec must include a 'mark' field")
	}}

	gen := &fakeGenerator{script: []scriptedTurn{
		{
			turn: generator.Turn{
				ToolCalls: []generator.ToolCall{
					{Id: "call_1", Name: "query_database", Arguments: map[string]any{"query": "SELECT 1"}},
					{Id: "call_2", Name: "render_chart", Arguments: map[string]any{}},
					{Id: "call_3", Name: "missing_tool"},
				},
				FinishReason: generator.FinishToolCalls,
				Usage:        generator.Usage{PromptTokens: 5, CompletionTokens: 1},
				Native:       "native-turn",
			},
		},
		{
			deltas: []generator.Delta{{Kind: generator.DeltaText, Text: "Done"}},
			turn:   generator.Turn{Text: "Done", FinishReason: generator.FinishStop, Usage: generator.Usage{PromptTokens: 7, CompletionTokens: 3}},
		},
	}}

	m := metrics.New()
	sink := &recordingSink{}
	svc := New(gen, []toolhandler.ToolHandler{db, chart}, 5, "", m)

	require.NoError(t, svc.Respond(context.Background(), userSays("chart my sales"), sink))

	require.Equal(t, []string{
		"start",
		"call", "result",
		"call", "result",
		"call", "result",
		"step-finish",
		"start", "text", "step-finish", "finish",
	}, sink.kinds())

	require.Equal(t, map[string]any{"rowCount": 1}, sink.events[2].payload)
	require.Equal(t, map[string]any{"error": "Chart spec must include a 'mark' field"}, sink.events[4].payload)
	require.Equal(t, map[string]any{"error": "unknown tool: missing_tool"}, sink.events[6].payload)
	require.Equal(t, generator.FinishToolCalls, sink.events[7].reason)
	require.Equal(t, generator.Usage{PromptTokens: 12, CompletionTokens: 4}, sink.events[11].usage)

	require.Len(t, db.calls, 1)
	require.Equal(t, map[string]any{"query": "SELECT 1"}, db.calls[0])

	require.Len(t, gen.requests, 2)
	require.Len(t, gen.requests[0].Tools, 2)

	second := gen.requests[1].Messages
	require.Len(t, second, 2)
	require.Equal(t, message.RoleAssistant, second[1].Role)
	require.Equal(t, "native-turn", second[1].Native)

	invocations := second[1].ToolInvocations()
	require.Len(t, invocations, 3)
	require.Equal(t, "call_1", invocations[0].ToolCallId)
	require.Equal(t, message.StateResult, invocations[0].State)
	require.Equal(t, "call_3", invocations[2].ToolCallId)
}

func TestRespondStepLimit(t *testing.T) {
	tool := &fakeTool{name: "browse_web", fn: func(args map[string]any) (toolhandler.ToolResponse, error) {
		return toolhandler.ToolResponse{Content: map[string]any{"success": true}}, nil
	}}

	gen := &fakeGenerator{script: []scriptedTurn{{
		turn: generator.Turn{
			ToolCalls:    []generator.ToolCall{{Id: "call", Name: "browse_web", Arguments: map[string]any{"query": "news"}}},
			FinishReason: generator.FinishToolCalls,
		},
	}}}

	sink := &recordingSink{}
	svc := New(gen, []toolhandler.ToolHandler{tool}, 2, "", nil)

	require.NoError(t, svc.Respond(context.Background(), userSays("loop forever"), sink))

	require.Len(t, gen.requests, 2)
	require.Len(t, tool.calls, 2)

	last := sink.events[len(sink.events)-1]
	require.Equal(t, "finish", last.kind)
	require.Equal(t, generator.FinishToolCalls, last.reason)
}

func TestRespondSetupFailure(t *testing.T) {
	gen := &fakeGenerator{script: []scriptedTurn{{err: errors.New("invalid api key")}}}

	sink := &recordingSink{}
	svc := New(gen, nil, 0, "", nil)

	err := svc.Respond(context.Background(), userSays("hi"), sink)
	require.ErrorContains(t, err, "invalid api key")
	require.Empty(t, sink.events)
}

func TestRespondFailureAfterOutput(t *testing.T) {
	gen := &fakeGenerator{script: []scriptedTurn{{
		deltas: []generator.Delta{{Kind: generator.DeltaText, Text: "partial"}},
		err:    context.DeadlineExceeded,
	}}}

	sink := &recordingSink{}
	svc := New(gen, nil, 0, "", nil)

	err := svc.Respond(context.Background(), userSays("hi"), sink)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, []string{"start", "text"}, sink.kinds())
}

func TestRespondFoldsSystemMessages(t *testing.T) {
	gen := &fakeGenerator{script: []scriptedTurn{{turn: generator.Turn{FinishReason: generator.FinishStop}}}}

	msgs := []message.Message{
		message.NewText(message.RoleSystem, "Answer in French."),
		message.NewText(message.RoleUser, "hi"),
		{Role: message.RoleAssistant},
	}

	svc := New(gen, nil, 0, "You are Rio.", nil)
	require.NoError(t, svc.Respond(context.Background(), msgs, &recordingSink{}))

	require.Equal(t, "You are Rio.\n\nAnswer in French.", gen.requests[0].System)
	require.Len(t, gen.requests[0].Messages, 1)
	require.Equal(t, message.RoleUser, gen.requests[0].Messages[0].Role)
}

func TestRespondNoMessages(t *testing.T) {
	svc := New(&fakeGenerator{}, nil, 0, "", nil)

	err := svc.Respond(context.Background(), []message.Message{message.NewText(message.RoleSystem, "only system")}, &recordingSink{})
	require.ErrorIs(t, err, ErrNoMessages)
}
