package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. WriteTimeout leaves room for a full registration saga,
// which includes one SMS gateway round trip.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
