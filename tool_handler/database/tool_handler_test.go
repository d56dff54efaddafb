package database

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	"github.com/w-h-a/rio/warehouse"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type mockWarehouse struct {
	queries []string
	result  warehouse.QueryResult
}

func (m *mockWarehouse) Query(_ context.Context, query string) warehouse.QueryResult {
	m.queries = append(m.queries, query)
	return m.result
}

func (m *mockWarehouse) Ping(context.Context) error { return nil }

func (m *mockWarehouse) Stats() warehouse.Stats { return warehouse.Stats{} }

func (m *mockWarehouse) Close() error { return nil }

func TestInvoke(t *testing.T) {
	row := orderedmap.New[string, any]()
	row.Set("category", "Apparel")

	success := warehouse.QueryResult{
		Rows:     []warehouse.Row{row},
		RowCount: 1,
		Fields:   []warehouse.Field{{Name: "category", DataTypeID: 25}},
	}

	tests := []struct {
		name        string
		warehouse   *mockWarehouse
		args        map[string]any
		wantJSON    string
		wantIsError bool
		wantQueries int
	}{
		{
			name:        "rows",
			warehouse:   &mockWarehouse{result: success},
			args:        map[string]any{"query": "SELECT category FROM products"},
			wantJSON:    `{"rows":[{"category":"Apparel"}],"rowCount":1,"fields":[{"name":"category","dataTypeID":25}]}`,
			wantQueries: 1,
		},
		{
			name:        "sql error",
			warehouse:   &mockWarehouse{result: warehouse.Failed("SELECT nope", `pq: column "nope" does not exist`)},
			args:        map[string]any{"query": "SELECT nope"},
			wantJSON:    `{"error":"pq: column \"nope\" does not exist","query":"SELECT nope"}`,
			wantIsError: true,
			wantQueries: 1,
		},
		{
			name:        "empty query never reaches the warehouse",
			warehouse:   &mockWarehouse{result: success},
			args:        map[string]any{"query": "  "},
			wantJSON:    `{"error":"query is required","query":"  "}`,
			wantIsError: true,
		},
		{
			name:        "missing query argument",
			warehouse:   &mockWarehouse{result: success},
			args:        map[string]any{"sql": "SELECT 1"},
			wantJSON:    `{"error":"query is required","query":""}`,
			wantIsError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewToolHandler(WithWarehouse(tt.warehouse), WithDescription("db"))

			rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{Id: "call_1", Arguments: tt.args})
			require.NoError(t, err)
			require.Equal(t, tt.wantIsError, rsp.IsError)

			bs, err := json.Marshal(rsp.Content)
			require.NoError(t, err)
			require.JSONEq(t, tt.wantJSON, string(bs))
			require.Len(t, tt.warehouse.queries, tt.wantQueries)
		})
	}
}

func TestInvokeWithoutWarehouse(t *testing.T) {
	th := NewToolHandler()

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{Arguments: map[string]any{"query": "SELECT 1"}})
	require.NoError(t, err)
	require.True(t, rsp.IsError)

	result, ok := rsp.Content.(warehouse.QueryResult)
	require.True(t, ok)
	require.Equal(t, "database is not configured", result.Failure.Error)
	require.Equal(t, "SELECT 1", result.Failure.Query)
}

func TestSpec(t *testing.T) {
	spec := NewToolHandler().Spec()

	require.Equal(t, "query_database", spec.Name)
	require.Contains(t, spec.Description, "Today's date is")
	require.Equal(t, []any{"query"}, spec.InputSchema["required"])
}
