package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/w-h-a/rio/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type httpServer struct {
	options server.Options
	router  *mux.Router
	srv     *http.Server
	addr    string
	mtx     sync.RWMutex
}

func (s *httpServer) Handle(path string, h http.Handler, methods ...string) {
	route := s.router.Handle(path, h)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

func (s *httpServer) Start() error {
	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	var h http.Handler = s.router
	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			h = ms[i](h)
		}
	}

	s.mtx.Lock()
	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler: otelhttp.NewHandler(h, "rio", otelhttp.WithSpanNameFormatter(spanName)),
	}
	srv := s.srv
	s.mtx.Unlock()

	slog.Info("http server listening", "address", s.Addr())

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "error", err)
		}
	}()

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	s.mtx.RLock()
	srv := s.srv
	s.mtx.RUnlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

func (s *httpServer) Addr() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if len(s.addr) > 0 {
		return s.addr
	}

	return s.options.Address
}

func spanName(operation string, r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return r.Method + " " + tpl
		}
	}
	return r.Method + " " + r.URL.Path
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	return &httpServer{
		options: options,
		router:  mux.NewRouter(),
	}
}
