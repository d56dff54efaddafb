package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

type tavily struct {
	mtx    sync.Mutex
	calls  atomic.Int32
	status int
	body   map[string]any
	header string
}

func (tv *tavily) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tv.calls.Add(1)

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	tv.mtx.Lock()
	tv.body = body
	tv.header = r.Header.Get("Authorization")
	tv.mtx.Unlock()

	if tv.status != 0 {
		w.WriteHeader(tv.status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"answer":"Retail sales rose 2%.","results":[{"title":"Retail report","url":"https://example.com/retail","content":"Sales rose","score":0.91}],"response_time":1.25}`))
}

func (tv *tavily) last() map[string]any {
	tv.mtx.Lock()
	defer tv.mtx.Unlock()
	return tv.body
}

func (tv *tavily) auth() string {
	tv.mtx.Lock()
	defer tv.mtx.Unlock()
	return tv.header
}

func invoke(t *testing.T, th toolhandler.ToolHandler, args map[string]any) toolhandler.ToolResponse {
	t.Helper()
	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{Id: "call_1", Arguments: args})
	require.NoError(t, err)
	return rsp
}

func TestInvoke(t *testing.T) {
	tv := &tavily{}
	srv := httptest.NewServer(tv)
	defer srv.Close()

	th := NewToolHandler(WithApiKey("tvly-test"), WithUrl(srv.URL), WithClient(srv.Client()))

	rsp := invoke(t, th, map[string]any{"query": "retail sales trend"})
	require.False(t, rsp.IsError)

	bs, err := json.Marshal(rsp.Content)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"success": true,
		"query": "retail sales trend",
		"answer": "Retail sales rose 2%.",
		"results": [{"title":"Retail report","url":"https://example.com/retail","content":"Sales rose","score":0.91}],
		"total_results": 1,
		"response_time": 1.25,
		"search_params": {"topic":"general","search_depth":"basic","max_results":5,"time_range":null,"days":null,"include_answer":true,"include_raw_content":false}
	}`, string(bs))

	require.Equal(t, "Bearer tvly-test", tv.auth())
	require.Equal(t, "retail sales trend", tv.last()["query"])
	require.Nil(t, tv.last()["days"])
	require.Equal(t, float64(3), tv.last()["chunks_per_source"])
}

func TestInvokeNewsParams(t *testing.T) {
	tv := &tavily{}
	srv := httptest.NewServer(tv)
	defer srv.Close()

	th := NewToolHandler(WithApiKey("tvly-test"), WithUrl(srv.URL))

	invoke(t, th, map[string]any{
		"query":          "competitor launch",
		"topic":          "news",
		"max_results":    50,
		"time_range":     "week",
		"include_answer": false,
	})

	require.Equal(t, "news", tv.last()["topic"])
	require.Equal(t, float64(7), tv.last()["days"])
	require.Equal(t, float64(20), tv.last()["max_results"])
	require.Equal(t, "week", tv.last()["time_range"])
	require.Equal(t, false, tv.last()["include_answer"])
}

func TestInvokeFailures(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		status    int
		args      map[string]any
		wantError string
		wantCalls int32
	}{
		{
			name:      "empty query",
			apiKey:    "tvly-test",
			args:      map[string]any{"query": "   "},
			wantError: "Search query is required and cannot be empty",
		},
		{
			name:      "missing api key",
			args:      map[string]any{"query": "retail"},
			wantError: "Web search is not configured: TAVILY_API_KEY is not set",
		},
		{
			name:      "upstream error",
			apiKey:    "tvly-test",
			status:    http.StatusBadGateway,
			args:      map[string]any{"query": "retail"},
			wantError: "Tavily API error: 502 Bad Gateway",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv := &tavily{status: tt.status}
			srv := httptest.NewServer(tv)
			defer srv.Close()

			th := NewToolHandler(WithApiKey(tt.apiKey), WithUrl(srv.URL))

			rsp := invoke(t, th, tt.args)
			require.True(t, rsp.IsError)

			failure, ok := rsp.Content.(Failure)
			require.True(t, ok)
			require.False(t, failure.Success)
			require.Equal(t, tt.wantError, failure.Error)
			require.Equal(t, tt.args["query"], failure.Query)
			require.Equal(t, tt.wantCalls, tv.calls.Load())
		})
	}
}

func TestInvokeCachesIdenticalSearches(t *testing.T) {
	tv := &tavily{}
	srv := httptest.NewServer(tv)
	defer srv.Close()

	th := NewToolHandler(WithApiKey("tvly-test"), WithUrl(srv.URL), WithCacheTTL(time.Minute))

	first := invoke(t, th, map[string]any{"query": "retail"})
	second := invoke(t, th, map[string]any{"query": "retail"})
	invoke(t, th, map[string]any{"query": "retail", "topic": "news"})

	require.Equal(t, first.Content, second.Content)
	require.Equal(t, "hit", second.Metadata["cache"])
	require.Equal(t, int32(2), tv.calls.Load())
}
