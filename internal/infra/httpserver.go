package infra

import (
	"context"
	"net"
	"net/http"
	"time"
)

// headerReadCap bounds how long a connection may dribble request headers,
// independent of the body read timeout.
const headerReadCap = 5 * time.Second

// HTTPServer owns the API listener and its drain-on-shutdown sequence.
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer builds the listener from the config-driven timeouts.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	headerTimeout := headerReadCap
	if cfg.HTTPReadTimeout > 0 && cfg.HTTPReadTimeout < headerTimeout {
		headerTimeout = cfg.HTTPReadTimeout
	}
	return &HTTPServer{srv: &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: headerTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Addr returns the listen address, for startup logging.
func (s *HTTPServer) Addr() string {
	return s.srv.Addr
}

// Start serves until the listener closes.
func (s *HTTPServer) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests until
// ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
