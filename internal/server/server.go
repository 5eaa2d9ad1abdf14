// Package server exposes the admin review API and the public comment
// surface over HTTP. Admin endpoints are gated by a bearer token issued
// at login (or the configured admin password itself); comment reads and
// writes are public, bounded by the anti-spiral caps.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"satirewire/internal/config"
	"satirewire/internal/core"
	"satirewire/internal/logger"
)

// Store is the persistence surface the HTTP layer needs.
type Store interface {
	Published(ctx context.Context) ([]core.Article, error)
	SavePublished(ctx context.Context, articles []core.Article) error
	Pending(ctx context.Context) ([]core.Article, error)
	SavePending(ctx context.Context, articles []core.Article) error
	AppendFeedback(ctx context.Context, rec core.FeedbackRecord) error
	Comments(ctx context.Context, slug string) ([]core.Comment, error)
	SaveComments(ctx context.Context, slug string, comments []core.Comment) error
	AllComments(ctx context.Context) ([]core.Comment, error)
}

// Server represents the HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      Store
	config     config.Server
	comments   config.Comments
	log        *slog.Logger

	mu     sync.Mutex
	tokens map[string]bool // bearer tokens issued by login
}

// New creates a new HTTP server instance.
func New(store Store, cfg config.Server, comments config.Comments) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		store:    store,
		config:   cfg,
		comments: comments,
		log:      logger.Get(),
		tokens:   map[string]bool{},
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.config.CORSEnabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/login", s.handleLogin)

		// Public comment surface.
		r.Get("/comments/{slug}", s.handleListComments)
		r.Post("/comments", s.handlePostComment)

		// Admin review surface.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/pending", s.handlePending)
			r.Get("/published", s.handlePublished)
			r.Post("/approve", s.handleApprove)
			r.Post("/reject", s.handleReject)
			r.Post("/delete_published", s.handleDeletePublished)
			r.Get("/comments", s.handleAllComments)
			r.Post("/comments/delete", s.handleDeleteComment)
		})
	})
}

// requireAdmin gates admin endpoints on a bearer token: either a token
// issued by login or the admin password itself.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == token {
			token = ""
		}
		if s.config.AdminPassword == "" || token == "" || !s.validToken(token) {
			s.log.Warn("Unauthorized admin request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			s.respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validToken(token string) bool {
	if token == s.config.AdminPassword {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

func (s *Server) issueToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = true
}

// decodeBody decodes a JSON request body into v. A missing or
// unparseable body leaves v at its zero value; field validation in the
// handlers produces the client-facing errors.
func decodeBody(r *http.Request, v any) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(v)
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

// respondError writes the uniform error shape.
func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}
