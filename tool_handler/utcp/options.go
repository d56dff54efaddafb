package utcp

import (
	"context"

	toolhandler "github.com/w-h-a/rio/tool_handler"
)

// Caller is the slice of the UTCP client a handler needs.
type Caller interface {
	CallTool(ctx context.Context, toolName string, args map[string]any) (any, error)
}

type utcpClientKey struct{}

func WithUtcpClient(client Caller) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, utcpClientKey{}, client)
	}
}

func UtcpClientFrom(ctx context.Context) (Caller, bool) {
	client, ok := ctx.Value(utcpClientKey{}).(Caller)
	return client, ok
}

type nameKey struct{}

func WithToolName(name string) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, nameKey{}, name)
	}
}

func ToolNameFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(nameKey{}).(string)
	return name, ok
}

type specKey struct{}

func WithToolSpec(spec toolhandler.ToolSpec) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, specKey{}, spec)
	}
}

func ToolSpecFrom(ctx context.Context) (toolhandler.ToolSpec, bool) {
	spec, ok := ctx.Value(specKey{}).(toolhandler.ToolSpec)
	return spec, ok
}
