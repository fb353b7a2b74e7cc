// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects store, services, handlers,
// middleware and routes. It decides:
//   - which storage driver backs the process (OpenStore)
//   - which URL patterns map to which handler functions
//   - which routes need a signed-in user
//   - how the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go: config.Load → server.OpenStore → server.New → Start
//	New:     Store → Enricher → services → handlers → routes
//
// This is the "composition root" pattern: every dependency is wired in one
// place, rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/prompt-market/internal/auth"
	"github.com/sakif/prompt-market/internal/config"
	"github.com/sakif/prompt-market/internal/handler"
	"github.com/sakif/prompt-market/internal/middleware"
	"github.com/sakif/prompt-market/internal/repository"
	"github.com/sakif/prompt-market/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The store is owned by the caller: the same store also serves the seed and
// migrate commands, so the command that opened it closes it.
type Server struct {
	router    chi.Router
	config    *config.Config
	logger    *slog.Logger
	store     repository.Store
	passwords *auth.PasswordService
	github    auth.OAuthProvider
}

// Option customises a Server before its routes are built.
type Option func(*Server)

// WithPasswordService replaces the production bcrypt cost, e.g. with
// bcrypt.MinCost in tests.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(s *Server) { s.passwords = p }
}

// WithOAuthProvider replaces the GitHub provider built from config.
func WithOAuthProvider(p auth.OAuthProvider) Option {
	return func(s *Server) { s.github = p }
}

// New wires every layer over store and builds the router.
//
// Each layer only receives what it needs:
//   - services get the repository.Store interface, not a concrete driver
//   - handlers get services, never the store
func New(cfg *config.Config, store repository.Store, logger *slog.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		store:     store,
		passwords: auth.NewPasswordService(),
	}
	if cfg.GitHubEnabled() {
		// Assigned only when configured: a nil *GitHubProvider stored in the
		// interface would not compare equal to nil.
		s.github = auth.NewGitHubProvider(
			cfg.Auth.GitHub.ClientID,
			cfg.Auth.GitHub.ClientSecret,
			cfg.GitHubCallbackURL(),
		)
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz
//	GET    /auth/github/login | /auth/github/callback
//	POST   /api/register | /api/login | /api/logout
//	GET    /api/user                         (auth)
//	GET    /api/categories[/{slug}]
//	GET    /api/prompts[/{id}]               (optional auth: isFavorited, inCart)
//	GET    /api/prompts/{id}/reviews
//	POST   /api/prompts/{id}/reviews         (auth)
//	GET    /api/prompts/my-prompts           (auth)
//	POST   /api/prompts | PATCH /api/prompts/{id}   (auth)
//	*      /api/favorites, /api/cart, /api/purchases (auth)
//	GET    /api/stats
//
// MIDDLEWARE ORDER MATTERS:
// The first Use is the outermost wrapper:
//  1. RequestID: assigns the id the logger and Sentry events carry
//  2. RealIP: extracts the client IP from proxy headers
//  3. Logger: logs each request with timing info
//  4. Recoverer: turns a panic into a 500 instead of a crash
//  5. sentryhttp: attaches a per-request hub; reports and re-panics so
//     Recoverer still answers the client
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.TokenTTL())
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	authenticator := auth.NewTokenAuthenticator(tokens, s.store.Users())
	requireAuth := auth.RequireAuth(authenticator)
	optionalAuth := auth.OptionalAuth(authenticator)

	// === Services ===
	enricher := service.NewEnricher(s.store, s.logger)
	favorites := service.NewFavorites(s.store, enricher, s.logger)
	cart := service.NewCart(s.store, enricher, s.logger)

	// === Handlers ===
	catalogH := handler.NewCatalogHandler(service.NewCatalogService(s.store, enricher, s.logger), s.logger)
	favoritesH := handler.NewMembershipHandler(favorites, s.logger)
	cartH := handler.NewMembershipHandler(cart, s.logger)
	reviewH := handler.NewReviewHandler(service.NewReviewLedger(s.store, s.logger), s.logger)
	statsH := handler.NewStatsHandler(service.NewStatsService(s.store), s.logger)
	purchaseH := handler.NewPurchaseHandler(service.NewPurchaseService(s.store, cart, enricher, s.logger), s.logger)
	promptH := handler.NewPromptHandler(service.NewPromptService(s.store, enricher, s.logger), s.logger)
	healthH := handler.NewHealthHandler(s.store, s.logger)
	authH := handler.NewAuthHandler(
		service.NewAuthService(s.store.Users(), tokens, s.passwords, s.logger),
		s.github,
		tokens.TTL(),
		s.config.SecureCookies(),
		s.logger,
	)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	s.router.Get("/healthz", healthH.HandleHealth)

	s.router.Route("/auth/github", func(r chi.Router) {
		r.Get("/login", authH.HandleGitHubLogin)
		r.Get("/callback", authH.HandleGitHubCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authH.HandleRegister)
		r.Post("/login", authH.HandleLogin)
		r.Post("/logout", authH.HandleLogout)

		// Public reads. A valid token only adds per-viewer flags.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/categories", catalogH.HandleListCategories)
			r.Get("/categories/{slug}", catalogH.HandleGetCategory)
			r.Get("/prompts", catalogH.HandleListPrompts)
			r.Get("/prompts/{id}", catalogH.HandleGetPrompt)
			r.Get("/prompts/{id}/reviews", reviewH.HandleList)
			r.Get("/stats", statsH.HandleGet)
		})

		// Everything below needs a signed-in user. The user id always comes
		// from the token, never from the request body.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/user", authH.HandleMe)

			// Static "my-prompts" wins over {id} in chi's radix tree.
			r.Get("/prompts/my-prompts", promptH.HandleMine)
			r.Post("/prompts", promptH.HandleCreate)
			r.Patch("/prompts/{id}", promptH.HandleUpdate)
			r.Post("/prompts/{id}/reviews", reviewH.HandleCreate)

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoritesH.HandleList)
				r.Post("/", favoritesH.HandleAdd)
				r.Delete("/{promptId}", favoritesH.HandleRemove)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartH.HandleList)
				r.Post("/", cartH.HandleAdd)
				r.Delete("/", cartH.HandleClear)
				r.Delete("/{promptId}", cartH.HandleRemove)
				r.Post("/checkout", purchaseH.HandleCheckout)
			})

			r.Get("/purchases", purchaseH.HandleHistory)
			r.Get("/purchases/records", purchaseH.HandleRecords)
			r.Post("/purchases", purchaseH.HandlePurchase)
		})
	})

	return nil
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM or a
// listener failure.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Flush buffered Sentry events
//
// The store is closed by whoever opened it, after Start returns.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("store", s.config.Store.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	defer sentry.Flush(2 * time.Second)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
