package toolprovider

import (
	"context"

	toolhandler "github.com/w-h-a/rio/tool_handler"
)

// ToolProvider discovers tools hosted elsewhere and wraps them as handlers.
type ToolProvider interface {
	Load(ctx context.Context, query string, limit int) ([]toolhandler.ToolHandler, error)
}
