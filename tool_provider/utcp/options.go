package utcp

import (
	"context"

	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"
	"github.com/w-h-a/rio/tool_handler/utcp"
	toolprovider "github.com/w-h-a/rio/tool_provider"
)

// Client is the slice of the UTCP client discovery needs.
type Client interface {
	utcp.Caller
	SearchTools(query string, limit int) ([]tools.Tool, error)
}

type utcpClientKey struct{}

func WithUtcpClient(client Client) toolprovider.Option {
	return func(o *toolprovider.Options) {
		o.Context = context.WithValue(o.Context, utcpClientKey{}, client)
	}
}

func UtcpClientFrom(ctx context.Context) (Client, bool) {
	client, ok := ctx.Value(utcpClientKey{}).(Client)
	return client, ok
}
