package server

import (
	"context"
	"net/http"
)

type Server interface {
	Handle(path string, h http.Handler, methods ...string)
	Start() error
	Stop(ctx context.Context) error
	Addr() string
}
