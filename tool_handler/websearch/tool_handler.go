package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/w-h-a/rio/prompt"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	Name       = "browse_web"
	DefaultUrl = "https://api.tavily.com/search"
)

const (
	defaultMaxResults = 5
	maxMaxResults     = 20
	defaultDays       = 7
	chunksPerSource   = 3
)

var (
	ErrEmptyQuery    = errors.New("Search query is required and cannot be empty")
	ErrNotConfigured = errors.New("Web search is not configured: TAVILY_API_KEY is not set")
)

type webSearchToolHandler struct {
	options toolhandler.Options
	apiKey  string
	url     string
	client  *http.Client
	cache   *cache.Cache
	spec    toolhandler.ToolSpec
}

func (th *webSearchToolHandler) Spec() toolhandler.ToolSpec {
	return th.spec
}

// Invoke never returns an error. Failures come back as a Failure payload.
func (th *webSearchToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	var in Input
	if err := toolhandler.DecodeArguments(req.Arguments, &in); err != nil {
		return failed(in.Query, fmt.Errorf("invalid %s arguments: %w", Name, err)), nil
	}

	if strings.TrimSpace(in.Query) == "" {
		return failed(in.Query, ErrEmptyQuery), nil
	}

	if th.apiKey == "" {
		return failed(in.Query, ErrNotConfigured), nil
	}

	body := newSearchRequest(in)

	key, err := json.Marshal(body)
	if err != nil {
		return failed(in.Query, err), nil
	}

	if th.cache != nil {
		if hit, ok := th.cache.Get(string(key)); ok {
			return toolhandler.ToolResponse{
				Content:  hit,
				Metadata: map[string]string{"cache": "hit"},
			}, nil
		}
	}

	rsp, err := th.search(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "web search failed", "query", in.Query, "error", err)
		return failed(in.Query, err), nil
	}

	result := Success{
		Success:      true,
		Query:        in.Query,
		Answer:       rsp.Answer,
		Results:      rsp.Results,
		TotalResults: len(rsp.Results),
		ResponseTime: rsp.ResponseTime,
		SearchParams: body.Params,
	}

	if result.Results == nil {
		result.Results = []SearchResult{}
	}

	if th.cache != nil {
		th.cache.SetDefault(string(key), result)
	}

	return toolhandler.ToolResponse{
		Content: result,
		Metadata: map[string]string{
			"total_results": strconv.Itoa(result.TotalResults),
		},
	}, nil
}

func (th *webSearchToolHandler) search(ctx context.Context, body []byte) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, th.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+th.apiKey)
	req.Header.Set("Content-Type", "application/json")

	rsp, err := th.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return nil, fmt.Errorf("Tavily API error: %s", rsp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(rsp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode Tavily response: %w", err)
	}

	return &out, nil
}

func newSearchRequest(in Input) searchRequest {
	params := Params{
		Topic:             TopicGeneral,
		SearchDepth:       DepthBasic,
		MaxResults:        defaultMaxResults,
		IncludeAnswer:     true,
		IncludeRawContent: in.IncludeRawContent,
	}

	if in.Topic == TopicNews {
		params.Topic = TopicNews
	}

	if in.SearchDepth == DepthAdvanced {
		params.SearchDepth = DepthAdvanced
	}

	if in.MaxResults != nil {
		params.MaxResults = min(max(*in.MaxResults, 0), maxMaxResults)
	}

	if in.IncludeAnswer != nil {
		params.IncludeAnswer = *in.IncludeAnswer
	}

	if slices.Contains(timeRanges, in.TimeRange) {
		timeRange := in.TimeRange
		params.TimeRange = &timeRange
	}

	if params.Topic == TopicNews {
		days := defaultDays
		if in.Days != nil && *in.Days >= 1 {
			days = *in.Days
		}
		params.Days = &days
	}

	return searchRequest{
		Query:           in.Query,
		Params:          params,
		ChunksPerSource: chunksPerSource,
		IncludeDomains:  []string{},
		ExcludeDomains:  []string{},
	}
}

func failed(query string, err error) toolhandler.ToolResponse {
	return toolhandler.ToolResponse{
		Content: Failure{
			Success: false,
			Error:   err.Error(),
			Query:   query,
		},
		IsError: true,
	}
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &webSearchToolHandler{
		options: options,
		url:     DefaultUrl,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		spec: toolhandler.ToolSpec{
			Name:        Name,
			Description: prompt.Search,
			InputSchema: toolhandler.SchemaFor(&Input{}),
		},
	}

	if key, ok := ApiKeyFrom(options.Context); ok {
		th.apiKey = key
	}

	if url, ok := UrlFrom(options.Context); ok && len(url) > 0 {
		th.url = url
	}

	if client, ok := ClientFrom(options.Context); ok && client != nil {
		th.client = client
	}

	if ttl, ok := CacheTTLFrom(options.Context); ok && ttl > 0 {
		th.cache = cache.New(ttl, 2*ttl)
	}

	return th
}
