package warehouse

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Location       string
	MaxConns       int
	IdleTimeout    time.Duration
	AcquireTimeout time.Duration
	QueryTimeout   time.Duration
	Context        context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithMaxConns(n int) Option {
	return func(o *Options) {
		o.MaxConns = n
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.IdleTimeout = d
	}
}

func WithAcquireTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.AcquireTimeout = d
	}
}

func WithQueryTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.QueryTimeout = d
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxConns:       20,
		IdleTimeout:    30 * time.Second,
		AcquireTimeout: 2 * time.Second,
		QueryTimeout:   10 * time.Second,
		Context:        context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
