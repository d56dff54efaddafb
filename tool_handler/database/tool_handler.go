package database

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/w-h-a/rio/prompt"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	getsafe "github.com/w-h-a/rio/util/get_safe"
	"github.com/w-h-a/rio/warehouse"
)

const Name = "query_database"

const (
	errNotConfigured = "database is not configured"
	errEmptyQuery    = "query is required"
)

type Input struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"The SQL query to execute against the Postgres warehouse"`
}

type databaseToolHandler struct {
	options   toolhandler.Options
	warehouse warehouse.Warehouse
	spec      toolhandler.ToolSpec
}

func (th *databaseToolHandler) Spec() toolhandler.ToolSpec {
	return th.spec
}

// Invoke never returns an error. Every failure comes back as a
// warehouse.Failure payload for the model to read.
func (th *databaseToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	query := getsafe.String(req.Arguments, "query")

	var result warehouse.QueryResult

	switch {
	case th.warehouse == nil:
		result = warehouse.Failed(query, errNotConfigured)
	case strings.TrimSpace(query) == "":
		result = warehouse.Failed(query, errEmptyQuery)
	default:
		result = th.warehouse.Query(ctx, query)
	}

	rsp := toolhandler.ToolResponse{
		Content:  result,
		IsError:  result.Failed(),
		Metadata: map[string]string{},
	}

	if !result.Failed() {
		rsp.Metadata["row_count"] = strconv.Itoa(result.RowCount)
	}

	return rsp, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &databaseToolHandler{
		options: options,
	}

	if w, ok := WarehouseFrom(options.Context); ok {
		th.warehouse = w
	}

	description, ok := DescriptionFrom(options.Context)
	if !ok {
		description = prompt.Database(time.Now())
	}

	th.spec = toolhandler.ToolSpec{
		Name:        Name,
		Description: description,
		InputSchema: toolhandler.SchemaFor(&Input{}),
	}

	return th
}
