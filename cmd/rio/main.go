package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/rio"
	"github.com/w-h-a/rio/attachment"
	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/generator/anthropic"
	"github.com/w-h-a/rio/generator/google"
	"github.com/w-h-a/rio/generator/openai"
	"github.com/w-h-a/rio/internal/handler"
	"github.com/w-h-a/rio/metrics"
	"github.com/w-h-a/rio/server"
	httpserver "github.com/w-h-a/rio/server/http"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	charttool "github.com/w-h-a/rio/tool_handler/chart"
	databasetool "github.com/w-h-a/rio/tool_handler/database"
	searchtool "github.com/w-h-a/rio/tool_handler/websearch"
	toolprovider "github.com/w-h-a/rio/tool_provider"
	"github.com/w-h-a/rio/tool_provider/utcp"
	"github.com/w-h-a/rio/warehouse"
	"github.com/w-h-a/rio/warehouse/postgres"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	cfg struct {
		// Server config
		Address     string        `help:"Address to listen on" default:":3000" env:"RIO_ADDRESS"`
		MaxDuration time.Duration `help:"Ceiling on one chat request" default:"30s"`
		RateLimit   float64       `help:"Chat requests per second across all clients, 0 disables" default:"0" env:"RIO_RATE_LIMIT"`
		RateBurst   int           `help:"Burst size for the chat rate limit" default:"10"`

		// Generator config
		Provider        string `help:"Model provider" enum:"google,anthropic,openai" default:"google" env:"RIO_PROVIDER"`
		Model           string `help:"Model identifier, empty selects the provider default" default:"" env:"RIO_MODEL"`
		GoogleApiKey    string `help:"API key for Gemini" default:"" env:"GOOGLE_GENERATIVE_AI_API_KEY"`
		AnthropicApiKey string `help:"API key for Anthropic" default:"" env:"ANTHROPIC_API_KEY"`
		OpenaiApiKey    string `help:"API key for OpenAI" default:"" env:"OPENAI_API_KEY"`
		BaseUrl         string `help:"Override the provider endpoint" default:""`
		MaxTokens       int    `help:"Maximum tokens per model step" default:"8192"`
		ThinkingBudget  int    `help:"Reasoning token budget, 0 disables" default:"0"`
		MaxSteps        int    `help:"Model steps allowed per chat request" default:"5"`

		// Tool config
		TavilyApiKey      string        `help:"API key for Tavily search" default:"" env:"TAVILY_API_KEY"`
		TavilyUrl         string        `help:"Tavily search endpoint" default:"https://api.tavily.com/search"`
		SearchCacheTTL    time.Duration `help:"How long identical searches are served from cache" default:"5m"`
		ToolProviderAddrs []string      `help:"UTCP endpoints with extra tools" default:"" env:"RIO_TOOL_PROVIDER_ADDRS"`

		// Warehouse config
		DatabaseUrl      string        `help:"Postgres connection string for the warehouse" default:"" env:"POSTGRES_SESSION_POOLER_URL"`
		DbMaxConns       int           `help:"Maximum open warehouse connections" default:"20"`
		DbIdleTimeout    time.Duration `help:"Close idle warehouse connections after" default:"30s"`
		DbConnectTimeout time.Duration `help:"Wait this long for a warehouse connection" default:"2s"`
		DbQueryTimeout   time.Duration `help:"Cancel warehouse queries after" default:"10s"`

		// Log config
		LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"RIO_LOG_LEVEL"`
		LogFile  string `help:"Write logs to this file with rotation instead of stdout" default:""`
	}
)

func main() {
	// Load .env before parsing so env bindings see it
	_ = godotenv.Load()

	// Parse inputs
	_ = kong.Parse(&cfg)

	setupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Create warehouse
	wh := newWarehouse(ctx)

	// Create model
	gen := newGenerator()

	// Create tooling; built-ins first so remote tools cannot shadow them
	allToolHandlers := []toolhandler.ToolHandler{
		databasetool.NewToolHandler(
			databasetool.WithWarehouse(wh),
		),
		charttool.NewToolHandler(),
		searchtool.NewToolHandler(
			searchtool.WithApiKey(cfg.TavilyApiKey),
			searchtool.WithUrl(cfg.TavilyUrl),
			searchtool.WithCacheTTL(cfg.SearchCacheTTL),
		),
	}

	allToolHandlers = append(allToolHandlers, remoteTools(ctx)...)

	// Create rio
	opts := []rio.Option{
		rio.WithMaxSteps(cfg.MaxSteps),
		rio.WithMetrics(m),
	}
	if wh != nil {
		opts = append(opts, rio.WithCloser(wh))
	}

	r := rio.New(gen, allToolHandlers, opts...)
	defer r.Close()

	// Create server
	chat := handler.NewChatHandler(r, attachment.NewNormalizer(), cfg.MaxDuration, m)

	var chatRoute http.Handler = http.HandlerFunc(chat.Handle)
	if cfg.RateLimit > 0 {
		chatRoute = httpserver.RateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst)(chatRoute)
	}

	srv := httpserver.NewServer(
		server.WithAddress(cfg.Address),
		httpserver.WithMiddleware(httpserver.Logging),
	)

	srv.Handle("/api/chat", chatRoute, http.MethodPost)
	srv.Handle("/api/chart", http.HandlerFunc(handler.NewChartHandler().Handle), http.MethodPost)
	srv.Handle("/api/project", http.HandlerFunc(handler.NewProjectHandler().Handle), http.MethodPost)
	srv.Handle("/healthz", http.HandlerFunc(handler.NewHealthHandler(wh).Handle), http.MethodGet)
	srv.Handle("/metrics", m.Handler(), http.MethodGet)

	if err := srv.Start(); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	slog.Info("rio ready", "provider", cfg.Provider, "tools", len(r.Tools()))

	<-ctx.Done()

	slog.Info("shutting down")

	if err := srv.Stop(context.Background()); err != nil {
		slog.Error("failed to stop server", "error", err)
	}
}

func setupLogger() {
	var writer io.Writer = os.Stdout
	if len(cfg.LogFile) > 0 {
		writer = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})))
}

func newGenerator() generator.Generator {
	opts := []generator.Option{
		generator.WithMaxTokens(cfg.MaxTokens),
		generator.WithThinkingBudget(cfg.ThinkingBudget),
	}

	if len(cfg.BaseUrl) > 0 {
		opts = append(opts, generator.WithBaseUrl(cfg.BaseUrl))
	}

	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewGenerator(append(opts,
			generator.WithApiKey(cfg.AnthropicApiKey),
			generator.WithModel(modelOr(anthropic.DefaultModel)),
		)...)
	case "openai":
		return openai.NewGenerator(append(opts,
			generator.WithApiKey(cfg.OpenaiApiKey),
			generator.WithModel(modelOr(openai.DefaultModel)),
		)...)
	default:
		return google.NewGenerator(append(opts,
			generator.WithApiKey(cfg.GoogleApiKey),
			generator.WithModel(modelOr(google.DefaultModel)),
		)...)
	}
}

func modelOr(fallback string) string {
	if len(cfg.Model) > 0 {
		return cfg.Model
	}
	return fallback
}

// newWarehouse returns nil when no database is configured; query_database
// then answers with a failure payload.
func newWarehouse(ctx context.Context) warehouse.Warehouse {
	if len(cfg.DatabaseUrl) == 0 {
		slog.Warn("POSTGRES_SESSION_POOLER_URL is not set; query_database is disabled")
		return nil
	}

	wh, err := postgres.NewWarehouse(
		warehouse.WithLocation(cfg.DatabaseUrl),
		warehouse.WithMaxConns(cfg.DbMaxConns),
		warehouse.WithIdleTimeout(cfg.DbIdleTimeout),
		warehouse.WithAcquireTimeout(cfg.DbConnectTimeout),
		warehouse.WithQueryTimeout(cfg.DbQueryTimeout),
	)
	if err != nil {
		slog.Error("failed to create warehouse", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DbConnectTimeout)
	defer cancel()

	if err := wh.Ping(pingCtx); err != nil {
		slog.Warn("warehouse is not reachable yet", "error", err)
	}

	return wh
}

func remoteTools(ctx context.Context) []toolhandler.ToolHandler {
	var addrs []string
	for _, addr := range cfg.ToolProviderAddrs {
		if len(addr) > 0 {
			addrs = append(addrs, addr)
		}
	}

	if len(addrs) == 0 {
		return nil
	}

	tp, err := utcp.NewToolProvider(
		toolprovider.WithAddrs(addrs...),
	)
	if err != nil {
		slog.Error("failed to create tool provider", "error", err)
		return nil
	}

	handlers, err := tp.Load(ctx, "", 50)
	if err != nil {
		slog.Error("failed to load remote tools", "error", err)
		return nil
	}

	slog.Info("loaded remote tools", "count", len(handlers))

	return handlers
}
