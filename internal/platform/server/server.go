package server

import (
	"net/http"
	"time"

	"debate-gallery/internal/config"
)

// New builds the HTTP server for addr; a nil cfg falls back to fixed timeouts
func New(addr string, handler http.Handler, cfg *config.ServerConfig) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if cfg != nil {
		srv.ReadTimeout = cfg.ReadTimeout
		srv.WriteTimeout = cfg.WriteTimeout
		srv.IdleTimeout = cfg.IdleTimeout
	}
	return srv
}
