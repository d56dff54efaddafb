package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/message"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	"github.com/w-h-a/rio/tool_handler/websearch"
)

func TestToContents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	g := &googleGenerator{http: srv.Client()}

	msgs := []message.Message{
		{Role: message.RoleUser, Content: []message.Part{
			{Type: message.PartTypeText, Text: "Describe these"},
			{Type: message.PartTypeImage, Image: srv.URL + "/logo.png"},
			{Type: message.PartTypeImage, Image: srv.URL + "/missing.png", MediaType: "image/png"},
		}},
		{Role: message.RoleAssistant, Content: []message.Part{
			{Type: message.PartTypeText, Text: "Searching."},
			{Type: message.PartTypeToolInvocation, ToolInvocation: &message.ToolInvocation{
				ToolCallId: "call_1",
				ToolName:   "browse_web",
				State:      message.StateResult,
				Args:       map[string]any{"query": "logo trends"},
				Result:     map[string]any{"success": true},
			}},
		}},
	}

	contents := g.toContents(context.Background(), msgs)

	require.Len(t, contents, 3)

	require.Equal(t, "user", contents[0].Role)
	require.Len(t, contents[0].Parts, 3)
	require.Equal(t, genai.Text("Describe these"), contents[0].Parts[0])
	require.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}, contents[0].Parts[1])
	require.Equal(t, genai.Text("[Error: Could not read image "+srv.URL+"/missing.png]"), contents[0].Parts[2])

	require.Equal(t, "model", contents[1].Role)
	require.Equal(t, genai.FunctionCall{Name: "browse_web", Args: map[string]any{"query": "logo trends"}}, contents[1].Parts[1])

	require.Equal(t, "user", contents[2].Role)
	require.Equal(t, genai.FunctionResponse{Name: "browse_web", Response: map[string]any{"success": true}}, contents[2].Parts[0])
}

func TestToSchema(t *testing.T) {
	spec := websearch.NewToolHandler().Spec()

	s := toSchema(spec.InputSchema)

	require.Equal(t, genai.TypeObject, s.Type)
	require.Equal(t, []string{"query"}, s.Required)
	require.Equal(t, genai.TypeString, s.Properties["query"].Type)
	require.Equal(t, []string{"general", "news"}, s.Properties["topic"].Enum)
	require.Equal(t, genai.TypeInteger, s.Properties["max_results"].Type)
	require.Equal(t, genai.TypeBoolean, s.Properties["include_raw_content"].Type)
}

func TestToSchemaNullable(t *testing.T) {
	s := toSchema(map[string]any{
		"type":  []any{"array", "null"},
		"items": map[string]any{"type": "number"},
	})

	require.True(t, s.Nullable)
	require.Equal(t, genai.TypeArray, s.Type)
	require.Equal(t, genai.TypeNumber, s.Items.Type)
}

func TestToDeclarations(t *testing.T) {
	decls := toDeclarations([]toolhandler.ToolSpec{{Name: "render_chart", Description: "Draw", InputSchema: map[string]any{"type": "object"}}})

	require.Len(t, decls, 1)
	require.Equal(t, "render_chart", decls[0].Name)
	require.Equal(t, genai.TypeObject, decls[0].Parameters.Type)
}

func TestFinishReason(t *testing.T) {
	require.Equal(t, generator.FinishToolCalls, finishReason(genai.FinishReasonStop, true))
	require.Equal(t, generator.FinishStop, finishReason(genai.FinishReasonStop, false))
	require.Equal(t, generator.FinishLength, finishReason(genai.FinishReasonMaxTokens, false))
	require.Equal(t, generator.FinishContentFilter, finishReason(genai.FinishReasonSafety, false))
}
