package websearch

import "encoding/json"

const (
	TopicGeneral = "general"
	TopicNews    = "news"

	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

var timeRanges = []string{"day", "week", "month", "year"}

type Input struct {
	Query             string `json:"query" jsonschema:"required,minLength=1" jsonschema_description:"The search query to execute - REQUIRED, cannot be empty"`
	Topic             string `json:"topic,omitempty" jsonschema:"enum=general,enum=news" jsonschema_description:"The category of search - 'news' for current events, 'general' for broader searches"`
	SearchDepth       string `json:"search_depth,omitempty" jsonschema:"enum=basic,enum=advanced,default=basic" jsonschema_description:"Search depth - 'basic' for generic results, 'advanced' for more relevant content"`
	MaxResults        *int   `json:"max_results,omitempty" jsonschema:"minimum=0,maximum=20,default=5" jsonschema_description:"Maximum number of search results to return"`
	IncludeRawContent bool   `json:"include_raw_content,omitempty" jsonschema:"default=false" jsonschema_description:"Include cleaned HTML content from search results"`
	TimeRange         string `json:"time_range,omitempty" jsonschema:"enum=day,enum=week,enum=month,enum=year" jsonschema_description:"Filter results by time range (news topic only)"`
	Days              *int   `json:"days,omitempty" jsonschema:"minimum=1,default=7" jsonschema_description:"Number of days back to include (news topic only)"`
	IncludeAnswer     *bool  `json:"include_answer,omitempty" jsonschema:"default=true" jsonschema_description:"Ask for a short generated answer alongside the results"`
}

type Params struct {
	Topic             string  `json:"topic"`
	SearchDepth       string  `json:"search_depth"`
	MaxResults        int     `json:"max_results"`
	TimeRange         *string `json:"time_range"`
	Days              *int    `json:"days"`
	IncludeAnswer     bool    `json:"include_answer"`
	IncludeRawContent bool    `json:"include_raw_content"`
}

type SearchResult struct {
	Title         string  `json:"title"`
	Url           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	RawContent    *string `json:"raw_content,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
}

type Success struct {
	Success      bool            `json:"success"`
	Query        string          `json:"query"`
	Answer       *string         `json:"answer"`
	Results      []SearchResult  `json:"results"`
	TotalResults int             `json:"total_results"`
	ResponseTime json.RawMessage `json:"response_time"`
	SearchParams Params          `json:"search_params"`
}

type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Query   string `json:"query"`
}

type searchRequest struct {
	Query string `json:"query"`
	Params
	ChunksPerSource          int      `json:"chunks_per_source"`
	IncludeImages            bool     `json:"include_images"`
	IncludeImageDescriptions bool     `json:"include_image_descriptions"`
	IncludeDomains           []string `json:"include_domains"`
	ExcludeDomains           []string `json:"exclude_domains"`
	Country                  *string  `json:"country"`
}

type searchResponse struct {
	Answer       *string         `json:"answer"`
	Results      []SearchResult  `json:"results"`
	ResponseTime json.RawMessage `json:"response_time"`
}
