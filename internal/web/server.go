// Package web hosts the demo's HTTP server.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"strings"
	"time"
)

// DefaultAddr is the address the demo binds by default.
const DefaultAddr = "localhost:8501"

// Config defines the inputs for the web server.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string
	// Headless suppresses opening a browser on startup.
	Headless bool
}

// Server hosts the demo HTTP server.
type Server struct {
	addr       string
	headless   bool
	httpServer *http.Server
}

// NewServer builds a configured web server around the given handler.
func NewServer(config Config, handler http.Handler) (*Server, error) {
	addr := strings.TrimSpace(config.Addr)
	if addr == "" {
		addr = DefaultAddr
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{
		addr:       addr,
		headless:   config.Headless,
		httpServer: httpServer,
	}, nil
}

// URL is the address the demo is reachable at.
func (s *Server) URL() string {
	return "http://" + s.addr
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("demo listening on %s", s.URL())
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()
	if !s.headless {
		go openBrowser(s.URL())
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// openBrowser points the desktop browser at the demo. Best effort; the
// demo works fine without it.
func openBrowser(url string) {
	if err := exec.Command("xdg-open", url).Start(); err != nil {
		log.Printf("open browser: %v", err)
	}
}
