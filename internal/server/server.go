// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go reads config and calls New(), which assembles the whole chain:
//
//	sqlite.DB → {Auth,Post,Comment,User}Service → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired in one
// place rather than scattered across the codebase. Each layer only receives
// what it needs: services get repository interfaces (not the concrete
// sqlite.DB), handlers get services (not repositories).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/handler"
	"github.com/sakif/snippetshare/internal/middleware"
	sqliteRepo "github.com/sakif/snippetshare/internal/repository/sqlite"
	"github.com/sakif/snippetshare/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy
// to add new options without changing function signatures.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. When the server shuts down we
// must close it to flush the WAL and release the file lock — handled in
// Start() after graceful drain.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// The JWT secret is mandatory: every write path (posts, comments, deletion)
// requires an authenticated caller, so a server without sessions would be
// read-only by accident rather than by choice.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /auth/github/login         → redirect to GitHub
//	GET    /auth/github/callback      → complete sign-in, set JWT cookie
//	POST   /auth/logout               → clear JWT cookie
//	GET    /api/posts                 → feed (public)
//	POST   /api/posts                 → create post (auth)
//	GET    /api/posts/{id}            → post detail (public)
//	DELETE /api/posts/{id}            → delete post + comments (auth, owner)
//	GET    /api/posts/{id}/comments   → threaded comments (public)
//	POST   /api/posts/{id}/comments   → create comment (auth)
//	GET    /api/users/{id}            → profile by username or id (public)
//	GET    /api/me                    → current user's profile (auth)
//
// MIDDLEWARE ORDER MATTERS — ours runs RequestID → RealIP → Recoverer →
// request logging on every route; RequireAuth only wraps the write routes.
func (s *Server) setupRoutes() error {
	// Chi's built-in middleware
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// Our custom logging middleware
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	// Services. The sqlite.DB implements all three repository interfaces,
	// so it is passed wherever one is needed.
	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	postService := service.NewPostService(s.db, s.db, s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.db, s.logger)
	userService := service.NewUserService(s.db, s.db, s.logger)

	// Handlers
	authHandler := handler.NewAuthHandler(github, authService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	// === OAuth Routes ===
	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		// Public reads — no auth, visible to everyone.
		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/{id}", postHandler.HandleGetByID)
		r.Get("/posts/{id}/comments", commentHandler.HandleListThreaded)
		r.Get("/users/{id}", userHandler.HandleGetProfile)

		// Authenticated writes.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/posts", postHandler.HandleCreate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Post("/posts/{id}/comments", commentHandler.HandleCreate)
			r.Get("/me", authHandler.HandleMe)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// The `defer s.db.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
