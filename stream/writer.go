package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/w-h-a/rio/generator"
)

const (
	CodeText       = "0"
	CodeError      = "3"
	CodeToolCall   = "9"
	CodeToolResult = "a"
	CodeFinish     = "d"
	CodeStepFinish = "e"
	CodeStepStart  = "f"
	CodeReasoning  = "g"
)

const (
	HeaderProtocol = "X-Vercel-AI-Data-Stream"
	ProtocolV1     = "v1"
)

type stepStart struct {
	MessageId string `json:"messageId"`
}

type toolCall struct {
	ToolCallId string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
}

type toolResult struct {
	ToolCallId string `json:"toolCallId"`
	Result     any    `json:"result"`
}

type finish struct {
	FinishReason string          `json:"finishReason"`
	Usage        generator.Usage `json:"usage"`
}

type stepFinish struct {
	FinishReason string          `json:"finishReason"`
	Usage        generator.Usage `json:"usage"`
	IsContinued  bool            `json:"isContinued"`
}

// Writer emits the chat data stream protocol. Headers are committed by the
// first frame, so a caller can still answer with a plain error response
// until then.
type Writer struct {
	mtx     sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (w *Writer) Started() bool {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.started
}

func (w *Writer) StartStep(messageId string) error {
	return w.frame(CodeStepStart, stepStart{MessageId: messageId})
}

func (w *Writer) Text(text string) error {
	return w.frame(CodeText, text)
}

func (w *Writer) Reasoning(text string) error {
	return w.frame(CodeReasoning, text)
}

func (w *Writer) ToolCall(call generator.ToolCall) error {
	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return w.frame(CodeToolCall, toolCall{ToolCallId: call.Id, ToolName: call.Name, Args: args})
}

func (w *Writer) ToolResult(toolCallId string, result any) error {
	return w.frame(CodeToolResult, toolResult{ToolCallId: toolCallId, Result: result})
}

func (w *Writer) FinishStep(reason string, usage generator.Usage) error {
	return w.frame(CodeStepFinish, stepFinish{FinishReason: reason, Usage: usage})
}

func (w *Writer) Finish(reason string, usage generator.Usage) error {
	return w.frame(CodeFinish, finish{FinishReason: reason, Usage: usage})
}

func (w *Writer) Error(msg string) error {
	return w.frame(CodeError, msg)
}

func (w *Writer) frame(code string, payload any) error {
	bs, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", code, err)
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()

	if !w.started {
		h := w.w.Header()
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("Cache-Control", "no-cache")
		h.Set(HeaderProtocol, ProtocolV1)
		w.w.WriteHeader(http.StatusOK)
		w.started = true
	}

	if _, err := fmt.Fprintf(w.w, "%s:%s\n", code, bs); err != nil {
		return err
	}

	if w.flusher != nil {
		w.flusher.Flush()
	}

	return nil
}

func NewWriter(w http.ResponseWriter) *Writer {
	flusher, _ := w.(http.Flusher)
	return &Writer{
		w:       w,
		flusher: flusher,
	}
}
