// Package server exposes the public JSON API and the token-protected
// admin dashboard.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leadlift/leadlift/internal/abtest"
	"github.com/leadlift/leadlift/internal/content"
	"github.com/leadlift/leadlift/internal/scoring"
	"github.com/leadlift/leadlift/internal/store"
)

// Config holds the server's dependencies and settings.
type Config struct {
	Store     *store.SQLiteStore
	Scoring   *scoring.Engine
	Registry  *abtest.Registry
	Assigner  *abtest.Assigner
	Library   *content.Library
	Logger    *slog.Logger
	Port      int
	TokenFile string
}

type Server struct {
	store     *store.SQLiteStore
	scoring   *scoring.Engine
	registry  *abtest.Registry
	assigner  *abtest.Assigner
	library   *content.Library
	logger    *slog.Logger
	port      int
	token     string
	tokenFile string
	router    chi.Router
	startTime time.Time
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		store:     cfg.Store,
		scoring:   cfg.Scoring,
		registry:  cfg.Registry,
		assigner:  cfg.Assigner,
		library:   cfg.Library,
		logger:    logger,
		port:      cfg.Port,
		token:     generateToken(),
		tokenFile: cfg.TokenFile,
		startTime: time.Now(),
	}

	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public endpoints
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(corsMiddleware)

		r.Get("/posts", s.handlePosts)
		r.Get("/posts/{slug}", s.handlePost)
		r.Get("/search", s.handleSearch)
		r.Get("/recommendations", s.handleRecommendations)

		r.Post("/contact", s.handleContact)
		r.Post("/newsletter", s.handleNewsletter)

		r.Post("/track", s.handleTrack)
		r.Get("/leads/{userID}", s.handleLead)

		r.Route("/ab/{testID}", func(r chi.Router) {
			r.Get("/variant", s.handleVariant)
			r.Post("/convert", s.handleConvert)
			r.Get("/results", s.handleResults)
		})
	})

	// Dashboard endpoints (protected)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/dashboard/test/{testID}", s.handleDashboardTest)
		r.Get("/dashboard/api/overview", s.handleDashboardAPI)
	})

	return r
}

func (s *Server) Start() error {
	return s.StartWithOptions(true)
}

// StartQuiet starts the server without printing startup messages.
func (s *Server) StartQuiet() error {
	return s.StartWithOptions(false)
}

func (s *Server) StartWithOptions(printMessages bool) error {
	// Write token to file so CLI commands can reach the dashboard
	if s.tokenFile != "" {
		if err := os.WriteFile(s.tokenFile, []byte(s.token), 0600); err != nil {
			s.logger.Warn("failed to write token file", "path", s.tokenFile, "error", err)
		}
	}

	addr := fmt.Sprintf(":%d", s.port)

	if printMessages {
		fmt.Println()
		fmt.Printf("leadlift running on http://localhost:%d\n", s.port)
		fmt.Printf("Dashboard: http://localhost:%d/dashboard?token=%s\n", s.port, s.token)
		fmt.Println()
		fmt.Println("Press Ctrl+C to stop")
	}

	s.logger.Info("server listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a fixed token if crypto/rand fails
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
