// README: HTTP server construction with timeouts.
package http

import (
	"net/http"
	"time"
)

// NewServer wraps handler with the timeouts used by the API process. The
// websocket stream is long-lived, so there is no write timeout.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
