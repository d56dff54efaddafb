package chart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

func request(t *testing.T, raw string) toolhandler.ToolRequest {
	t.Helper()
	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &args))
	return toolhandler.ToolRequest{Id: "call_1", Arguments: args}
}

func TestInvoke(t *testing.T) {
	th := NewToolHandler()

	rsp, err := th.Invoke(context.Background(), request(t, `{"spec":{"mark":"bar","title":"Engagement","data":{"values":"[{\"month\":\"Jan\",\"clicks\":10,\"opens\":20},{\"month\":\"Feb\",\"clicks\":15,\"opens\":25}]"},"encoding":{"x":{"field":"month","type":"nominal"}}}}`))
	require.NoError(t, err)
	require.False(t, rsp.IsError)
	require.Equal(t, "clicks,opens", rsp.Metadata["series"])
	require.Equal(t, "2", rsp.Metadata["points"])

	bs, err := json.Marshal(rsp.Content)
	require.NoError(t, err)
	require.JSONEq(t, `{"spec":{"mark":"bar","title":"Engagement","data":{"values":[{"month":"Jan","clicks":10,"opens":20},{"month":"Feb","clicks":15,"opens":25}]},"encoding":{"x":{"field":"month","type":"nominal"}}}}`, string(bs))
}

func TestInvokeSingleSeries(t *testing.T) {
	th := NewToolHandler()

	rsp, err := th.Invoke(context.Background(), request(t, `{"spec":{"mark":"pie","data":{"values":"[{\"name\":\"A\",\"value\":1}]"}}}`))
	require.NoError(t, err)

	_, ok := rsp.Metadata["series"]
	require.False(t, ok)
}

func TestInvokeErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		wantErr string
	}{
		{
			name:    "bad values",
			args:    `{"spec":{"mark":"bar","data":{"values":"[{"}}}`,
			wantErr: "Invalid JSON format in data.values",
		},
		{
			name:    "bad mark",
			args:    `{"spec":{"mark":"radar","data":{"values":"[{\"a\":1}]"}}}`,
			wantErr: "Invalid chart type 'radar'. Must be one of: bar, line, area, arc, pie",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewToolHandler().Invoke(context.Background(), request(t, tt.args))
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSpec(t *testing.T) {
	spec := NewToolHandler().Spec()

	require.Equal(t, "render_chart", spec.Name)
	require.Equal(t, "object", spec.InputSchema["type"])

	props, ok := spec.InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "spec")
}
