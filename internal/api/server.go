// Package api provides the local HTTP API server for remess.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/FO214/remess/internal/contacts"
	"github.com/FO214/remess/internal/stats"
)

// Server represents the HTTP API server. It binds to loopback only: the
// snapshot is personal data and the API has no authentication layer.
type Server struct {
	port   int
	engine *stats.Engine
	book   *contacts.Book
	logger *slog.Logger
	router chi.Router
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(port int, engine *stats.Engine, book *contacts.Book, logger *slog.Logger) *Server {
	s := &Server{
		port:   port,
		engine: engine,
		book:   book,
		logger: logger,
	}
	s.router = s.setupRouter()
	return s
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(s.loggerMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// App-wide statistics
		r.Get("/overview", s.handleOverview)
		r.Get("/words", s.handleAllWords)

		// Direct conversations
		r.Get("/contacts", s.handleTopContacts)
		r.Route("/contacts/{ident}", func(r chi.Router) {
			r.Get("/stats", s.handleContactStats)
			r.Get("/words", s.handleContactWords)
			r.Get("/emojis", s.handleContactEmojis)
			r.Get("/reactions", s.handleContactReactions)
			r.Get("/search", s.handleContactSearch)
		})

		// Group conversations
		r.Get("/groups", s.handleTopGroups)
		r.Route("/groups/{chatID}", func(r chi.Router) {
			r.Get("/stats", s.handleGroupStats)
			r.Get("/participants", s.handleGroupParticipants)
			r.Get("/words", s.handleGroupWords)
			r.Get("/emojis", s.handleGroupEmojis)
			r.Get("/reactions", s.handleGroupReactions)
			r.Get("/search", s.handleGroupSearch)
		})
	})

	return r
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(s.port))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// loggerMiddleware logs HTTP requests.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
