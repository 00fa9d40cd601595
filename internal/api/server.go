// Package api provides the HTTP API server and handlers for the Polka application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/polkabooks/polka-server/internal/http/response"
	"github.com/polkabooks/polka-server/internal/media/covers"
	"github.com/polkabooks/polka-server/internal/ratelimit"
	"github.com/polkabooks/polka-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService      *service.AuthService
	discoveryService *service.DiscoveryService
	reviewService    *service.ReviewService
	listService      *service.ListService
	recommendService *service.RecommendationService
	covers           *covers.Resolver
	loginLimiter     *ratelimit.KeyedRateLimiter
	router           *chi.Mux
	logger           *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	discoveryService *service.DiscoveryService,
	reviewService *service.ReviewService,
	listService *service.ListService,
	recommendService *service.RecommendationService,
	coverResolver *covers.Resolver,
	loginLimiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:      authService,
		discoveryService: discoveryService,
		reviewService:    reviewService,
		listService:      listService,
		recommendService: recommendService,
		covers:           coverResolver,
		loginLimiter:     loginLimiter,
		router:           chi.NewRouter(),
		logger:           logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes. Catalog browsing and search are
// public; everything touching per-user state requires a valid token.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public). Credential endpoints are rate limited
		// per client IP.
		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimitByIP).Post("/register", s.handleRegister)
			r.With(s.rateLimitByIP).Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
			r.With(s.requireAuth).Post("/logout-all", s.handleLogoutAll)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Catalog browsing.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Get("/options", s.handleFilterOptions)
			r.Get("/{id}", s.handleGetBook)
			r.Get("/{id}/cover", s.handleGetCover)

			// Reviews hang off their book.
			r.Get("/{id}/reviews", s.handleListReviews)
			r.With(s.requireAuth).Post("/{id}/reviews", s.handleAddReview)
			r.With(s.requireAuth).Post("/{id}/reviews/{reviewID}/like", s.handleLikeReview)
			r.With(s.requireAuth).Delete("/{id}/reviews/{reviewID}", s.handleDeleteReview)
		})

		r.Get("/search", s.handleSearch)

		// Per-user state.
		r.With(s.requireAuth).Get("/recommendations", s.handleRecommendations)

		r.Route("/lists", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetLists)
			r.Post("/move", s.handleMoveBetweenLists)
			r.Post("/{list}/books/{bookID}", s.handleAddToList)
			r.Delete("/{list}/books/{bookID}", s.handleRemoveFromList)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
