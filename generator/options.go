package generator

import (
	"context"
	"net/http"
)

type Option func(*Options)

type Options struct {
	ApiKey         string
	Model          string
	BaseUrl        string
	MaxTokens      int
	ThinkingBudget int
	Client         *http.Client
	Context        context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithBaseUrl(url string) Option {
	return func(o *Options) {
		o.BaseUrl = url
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithThinkingBudget enables extended reasoning where the provider supports
// it. Zero leaves it off.
func WithThinkingBudget(n int) Option {
	return func(o *Options) {
		o.ThinkingBudget = n
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxTokens: 8192,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
