package rio

import (
	"io"

	"github.com/w-h-a/rio/metrics"
)

type Option func(*Options)

type Options struct {
	MaxSteps     int
	SystemPrompt string
	Metrics      *metrics.Metrics
	Closers      []io.Closer
}

func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithCloser registers a resource that Close releases, in registration order.
func WithCloser(c io.Closer) Option {
	return func(o *Options) {
		o.Closers = append(o.Closers, c)
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
