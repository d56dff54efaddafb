package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/message"
	"github.com/w-h-a/rio/metrics"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxSteps     = 5
	defaultSystemPrompt = "You are a helpful assistant."
)

var (
	ErrNoMessages = errors.New("at least one message is required")
)

// Sink receives the events of one chat turn in order.
type Sink interface {
	StartStep(messageId string) error
	Text(text string) error
	Reasoning(text string) error
	ToolCall(call generator.ToolCall) error
	ToolResult(toolCallId string, result any) error
	FinishStep(reason string, usage generator.Usage) error
	Finish(reason string, usage generator.Usage) error
}

type state int

const (
	stateAwaitingModel state = iota
	stateDispatchingTool
	stateAwaitingToolResult
	stateStreamingFinal
)

func (s state) String() string {
	switch s {
	case stateAwaitingModel:
		return "awaiting-model"
	case stateDispatchingTool:
		return "dispatching-tool"
	case stateAwaitingToolResult:
		return "awaiting-tool-result"
	case stateStreamingFinal:
		return "streaming-final"
	}
	return "unknown"
}

type Service struct {
	generator    generator.Generator
	catalog      *Catalog
	maxSteps     int
	systemPrompt string
	metrics      *metrics.Metrics
	tracer       trace.Tracer
}

func (s *Service) Tools() []toolhandler.ToolSpec {
	return s.catalog.ListSpecs()
}

// Respond drives the model through at most maxSteps steps, running every
// requested tool in order between steps. Nothing reaches the sink before the
// first step produces output, so an error returned while the sink is still
// untouched means the request failed during setup.
func (s *Service) Respond(ctx context.Context, msgs []message.Message, sink Sink) error {
	system, history := splitSystem(s.systemPrompt, msgs)
	if len(history) == 0 {
		return ErrNoMessages
	}

	ctx, span := s.tracer.Start(ctx, "chat.Respond")
	defer span.End()

	var (
		st          = stateAwaitingModel
		step        int
		turn        generator.Turn
		total       generator.Usage
		pending     []generator.ToolCall
		call        generator.ToolCall
		rsp         toolhandler.ToolResponse
		invocations []message.ToolInvocation
	)

	for {
		slog.DebugContext(ctx, "chat transition", "state", st.String(), "step", step)

		switch st {
		case stateAwaitingModel:
			step++

			var err error
			turn, err = s.generate(ctx, step, system, history, sink)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}

			total = total.Add(turn.Usage)

			if turn.WantsTools() {
				pending = turn.ToolCalls
				invocations = make([]message.ToolInvocation, 0, len(pending))
				st = stateDispatchingTool
			} else {
				st = stateStreamingFinal
			}

		case stateDispatchingTool:
			call, pending = pending[0], pending[1:]

			if err := sink.ToolCall(call); err != nil {
				return err
			}

			rsp = s.dispatch(ctx, call)
			st = stateAwaitingToolResult

		case stateAwaitingToolResult:
			if err := sink.ToolResult(call.Id, rsp.Content); err != nil {
				return err
			}

			invocations = append(invocations, message.ToolInvocation{
				ToolCallId: call.Id,
				ToolName:   call.Name,
				State:      message.StateResult,
				Args:       call.Arguments,
				Result:     rsp.Content,
			})

			if len(pending) > 0 {
				st = stateDispatchingTool
				continue
			}

			if step >= s.maxSteps {
				slog.WarnContext(ctx, "chat reached the step limit", "steps", step)
				st = stateStreamingFinal
				continue
			}

			if err := sink.FinishStep(turn.FinishReason, turn.Usage); err != nil {
				return err
			}

			history = append(history, assistantStep(turn, invocations))
			st = stateAwaitingModel

		case stateStreamingFinal:
			span.SetAttributes(
				attribute.Int("chat.steps", step),
				attribute.String("chat.finish_reason", turn.FinishReason),
			)
			s.metrics.Steps(step)

			if err := sink.FinishStep(turn.FinishReason, turn.Usage); err != nil {
				return err
			}

			return sink.Finish(turn.FinishReason, total)
		}
	}
}

func (s *Service) generate(ctx context.Context, step int, system string, history []message.Message, sink Sink) (generator.Turn, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Generate", trace.WithAttributes(attribute.Int("chat.step", step)))
	defer span.End()

	messageId := newMessageId()
	started := false

	begin := func() error {
		if started {
			return nil
		}
		started = true
		return sink.StartStep(messageId)
	}

	turn, err := s.generator.Generate(
		ctx,
		generator.Request{
			System:   system,
			Messages: history,
			Tools:    s.catalog.ListSpecs(),
		},
		func(d generator.Delta) error {
			if err := begin(); err != nil {
				return err
			}
			switch d.Kind {
			case generator.DeltaReasoning:
				return sink.Reasoning(d.Text)
			default:
				return sink.Text(d.Text)
			}
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return generator.Turn{}, fmt.Errorf("step %d: %w", step, err)
	}

	if err := begin(); err != nil {
		return generator.Turn{}, err
	}

	span.SetAttributes(
		attribute.String("chat.finish_reason", turn.FinishReason),
		attribute.Int("chat.tool_calls", len(turn.ToolCalls)),
		attribute.Int("chat.prompt_tokens", turn.Usage.PromptTokens),
		attribute.Int("chat.completion_tokens", turn.Usage.CompletionTokens),
	)

	return turn, nil
}

// dispatch always yields a response; failures become an error payload the
// model sees as the tool's result.
func (s *Service) dispatch(ctx context.Context, call generator.ToolCall) toolhandler.ToolResponse {
	ctx, span := s.tracer.Start(ctx, "chat.Tool", trace.WithAttributes(
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.Id),
	))
	defer span.End()

	start := time.Now()

	rsp := s.invoke(ctx, call)

	s.metrics.ToolCall(call.Name, rsp.IsError, time.Since(start))

	span.SetAttributes(attribute.Bool("tool.is_error", rsp.IsError))
	if rsp.IsError {
		span.SetStatus(codes.Error, "tool returned an error")
	}

	return rsp
}

func (s *Service) invoke(ctx context.Context, call generator.ToolCall) toolhandler.ToolResponse {
	th, spec, ok := s.catalog.Get(call.Name)
	if !ok {
		slog.WarnContext(ctx, "model requested an unknown tool", "tool", call.Name)
		return failure(fmt.Sprintf("unknown tool: %s", call.Name))
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	rsp, err := th.Invoke(ctx, toolhandler.ToolRequest{
		Id:        call.Id,
		Arguments: args,
	})
	if err != nil {
		slog.ErrorContext(ctx, "tool invocation failed", "tool", spec.Name, "error", err)
		return failure(err.Error())
	}

	for k, v := range rsp.Metadata {
		if len(strings.TrimSpace(k)) == 0 {
			continue
		}
		slog.DebugContext(ctx, "tool metadata", "tool", spec.Name, k, v)
	}

	return rsp
}

func New(
	generator generator.Generator,
	toolHandlers []toolhandler.ToolHandler,
	maxSteps int,
	systemPrompt string,
	m *metrics.Metrics,
) *Service {
	catalog := NewCatalog(BuiltinTools...)

	for _, th := range toolHandlers {
		if th == nil {
			continue
		}
		if err := catalog.Register(th); err != nil {
			slog.Warn("skipping tool", "error", err)
			continue
		}
	}

	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	if len(strings.TrimSpace(systemPrompt)) == 0 {
		systemPrompt = defaultSystemPrompt
	}

	return &Service{
		generator:    generator,
		catalog:      catalog,
		maxSteps:     maxSteps,
		systemPrompt: systemPrompt,
		metrics:      m,
		tracer:       otel.Tracer("github.com/w-h-a/rio/internal/service/chat"),
	}
}
