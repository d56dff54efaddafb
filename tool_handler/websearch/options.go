package websearch

import (
	"context"
	"net/http"
	"time"

	toolhandler "github.com/w-h-a/rio/tool_handler"
)

type apiKeyKey struct{}

func WithApiKey(key string) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, apiKeyKey{}, key)
	}
}

func ApiKeyFrom(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(apiKeyKey{}).(string)
	return key, ok
}

type urlKey struct{}

func WithUrl(url string) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, urlKey{}, url)
	}
}

func UrlFrom(ctx context.Context) (string, bool) {
	url, ok := ctx.Value(urlKey{}).(string)
	return url, ok
}

type clientKey struct{}

func WithClient(client *http.Client) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, clientKey{}, client)
	}
}

func ClientFrom(ctx context.Context) (*http.Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*http.Client)
	return client, ok
}

type cacheTTLKey struct{}

// WithCacheTTL caches identical searches for ttl. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, cacheTTLKey{}, ttl)
	}
}

func CacheTTLFrom(ctx context.Context) (time.Duration, bool) {
	ttl, ok := ctx.Value(cacheTTLKey{}).(time.Duration)
	return ttl, ok
}
