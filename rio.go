package rio

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/internal/service/chat"
	"github.com/w-h-a/rio/message"
	"github.com/w-h-a/rio/prompt"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

type Rio struct {
	chat    *chat.Service
	closers []io.Closer
	once    sync.Once
	err     error
}

func (r *Rio) Respond(ctx context.Context, msgs []message.Message, sink chat.Sink) error {
	return r.chat.Respond(ctx, msgs, sink)
}

func (r *Rio) Tools() []toolhandler.ToolSpec {
	return r.chat.Tools()
}

func (r *Rio) Close() error {
	r.once.Do(func() {
		var errs []error
		for _, c := range r.closers {
			if c == nil {
				continue
			}
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		r.err = errors.Join(errs...)
	})
	return r.err
}

// New wires the chat service. Tools keep the order given; a later tool never
// replaces an earlier one of the same name.
func New(
	generator generator.Generator,
	toolHandlers []toolhandler.ToolHandler,
	opts ...Option,
) *Rio {
	options := NewOptions(opts...)

	systemPrompt := options.SystemPrompt
	if len(systemPrompt) == 0 {
		systemPrompt = prompt.System
	}

	svc := chat.New(
		generator,
		toolHandlers,
		options.MaxSteps,
		systemPrompt,
		options.Metrics,
	)

	return &Rio{
		chat:    svc,
		closers: options.Closers,
	}
}
