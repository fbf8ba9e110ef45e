// Package httpserver builds HTTP servers with sane defaults for this project.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with bounded header/read/write timeouts so a stuck
// client cannot pin a connection open indefinitely.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
