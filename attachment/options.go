package attachment

import (
	"net/http"
)

type Option func(*Options)

type Options struct {
	Client      *http.Client
	Concurrency int
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Concurrency: 4,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
