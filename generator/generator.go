package generator

import (
	"context"
	"encoding/json"

	"github.com/w-h-a/rio/message"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

// Generator runs one model turn, streaming text and reasoning through
// onDelta as it arrives. A DeltaFunc error aborts the turn.
type Generator interface {
	Generate(ctx context.Context, req Request, onDelta DeltaFunc) (Turn, error)
}

type Request struct {
	System   string
	Messages []message.Message
	Tools    []toolhandler.ToolSpec
}

const (
	DeltaText      = "text"
	DeltaReasoning = "reasoning"
)

type Delta struct {
	Kind string
	Text string
}

type DeltaFunc func(Delta) error

const (
	FinishStop          = "stop"
	FinishLength        = "length"
	FinishContentFilter = "content-filter"
	FinishToolCalls     = "tool-calls"
	FinishError         = "error"
	FinishOther         = "other"
	FinishUnknown       = "unknown"
)

type ToolCall struct {
	Id        string         `json:"toolCallId"`
	Name      string         `json:"toolName"`
	Arguments map[string]any `json:"args"`
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
	}
}

// Turn is one finished model response. Native carries the provider's own
// form of the turn so it can be replayed verbatim on the next step.
type Turn struct {
	Text         string
	Reasoning    string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        Usage
	Native       any
}

func (t Turn) WantsTools() bool {
	return len(t.ToolCalls) > 0
}

// ResultText renders a tool result the way it is handed back to a model.
func ResultText(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	bs, err := json.Marshal(result)
	if err != nil {
		return "null"
	}
	return string(bs)
}

// ResultObject renders a tool result as a JSON object for providers that
// only accept objects.
func ResultObject(result any) map[string]any {
	bs, err := json.Marshal(result)
	if err == nil {
		var obj map[string]any
		if json.Unmarshal(bs, &obj) == nil && obj != nil {
			return obj
		}
	}
	return map[string]any{"result": ResultText(result)}
}

func ParseArguments(raw []byte) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
