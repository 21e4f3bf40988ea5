// Package server implements the HTTP and MCP server for trustee serve.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/search"
	_ "github.com/trusteehq/trustee/internal/server/docs" // swagger registration
	"github.com/trusteehq/trustee/internal/session"
)

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	Token      string // bearer token; empty disables auth
	CORSOrigin string // empty = "*"
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Host: "127.0.0.1",
		Port: 7433,
	}
}

// Server serves the trustee REST API: the checkpoint store's resumable view,
// transcripts, search, metrics, and a websocket event stream. All storage
// access goes through the coordinator and manager — by hash, never by path.
type Server struct {
	coordinator *checkpoint.Coordinator
	manager     *checkpoint.Manager
	sessions    *session.Store
	index       *search.Index // optional; nil disables /search
	hub         *Hub
	router      chi.Router
	config      Config
	log         *applog.Logger
}

// New creates a server over the checkpoint coordinator and session store.
func New(coordinator *checkpoint.Coordinator, sessions *session.Store, index *search.Index, config Config) *Server {
	s := &Server{
		coordinator: coordinator,
		manager:     coordinator.Manager(),
		sessions:    sessions,
		index:       index,
		hub:         NewHub(),
		config:      config,
		log:         applog.Log,
	}
	s.router = s.setupRouter()
	return s
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(l *applog.Logger) { s.log = l }

// Hub returns the event hub so watchers can publish into it.
func (s *Server) Hub() *Hub { return s.hub }

// setupRouter configures all routes.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.config.CORSOrigin))

	r.Route("/api/v1", func(r chi.Router) {
		if s.config.Token != "" {
			r.Use(bearerAuth(s.config.Token))
		}
		r.Get("/status", s.handleStatus)
		r.Get("/projects", s.handleListProjects)
		r.Get("/projects/{hash}", s.handleGetProject)
		r.Post("/projects/{hash}/touch", s.handleTouch)
		r.Get("/projects/{hash}/sessions", s.handleListSessions)
		r.Get("/projects/{hash}/sessions/{sessionID}", s.handleGetSession)
		r.Get("/resumable", s.handleResumable)
		r.Get("/search", s.handleSearch)
		r.Get("/events", s.handleEvents)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Trustee</title></head>
<body>
<h1>Trustee Server</h1>
<p>API: <a href="/api/v1/resumable">/api/v1/resumable</a></p>
<p>Docs: <a href="/swagger/index.html">/swagger/index.html</a></p>
<p>Metrics: <a href="/metrics">/metrics</a></p>
</body>
</html>`))
	})

	return r
}

// Router returns the chi router for combining with other handlers or tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr(),
		Handler: s.router,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	if s.config.Port == 0 {
		s.config.Port = ln.Addr().(*net.TCPAddr).Port
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("server listening", "addr", s.Addr())
	fmt.Printf("Trustee server running at http://%s\n", s.Addr())
	err = srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// corsMiddleware adds CORS headers for local development clients.
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
