// Package api serves the funnel JSON API over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/infrastructure/api/jsonapi"
	apimiddleware "github.com/reviewfunnel/funnel/infrastructure/api/middleware"
	v1 "github.com/reviewfunnel/funnel/infrastructure/api/v1"
	"github.com/reviewfunnel/funnel/internal/log"
)

const (
	// healthTimeout bounds the database ping behind /healthz.
	healthTimeout = 3 * time.Second

	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	idleTimeout       = 120 * time.Second

	// writeGrace lets the 504 from the request timeout reach the client
	// before the connection's write deadline.
	writeGrace = 5 * time.Second
)

// APIServer provides an HTTP API backed by a funnel Client.
type APIServer struct {
	client       *funnel.Client
	httpServer   *http.Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given funnel Client.
func NewAPIServer(client *funnel.Client) *APIServer {
	return &APIServer{
		client: client,
		logger: client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up the health checks and all v1 API routes on the given
// router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Get("/health", a.health)
	router.Get("/healthz", a.ready)

	publicRouter := v1.NewPublicRouter(c)
	ownerRouter := v1.NewOwnerRouter(c)
	adminRouter := v1.NewAdminRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   c.Config().CORSOrigins(),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", apimiddleware.CorrelationHeader},
			ExposedHeaders:   []string{apimiddleware.CorrelationHeader, "Retry-After", "X-RateLimit-Remaining"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Use(apimiddleware.Correlation)
		r.Use(apimiddleware.Logging(a.logger))
		r.Use(chimiddleware.Timeout(c.Config().RequestTimeout()))

		r.Mount("/", publicRouter.Routes())

		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.RequireAuth(c.Auth, a.logger))
			r.Mount("/me", ownerRouter.Routes())

			r.Group(func(r chi.Router) {
				r.Use(apimiddleware.RequireAdmin(a.logger))
				r.Mount("/admin", adminRouter.Routes())
			})
		})
	})
}

// health reports that the process is up.
func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready reports whether the database answers.
func (a *APIServer) ready(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), healthTimeout)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.logger.WarnContext(ctx, "readiness check failed", slog.String("error", err.Error()))
		apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, jsonapi.NewErrorResponse(
			http.StatusServiceUnavailable, "database unavailable", log.CorrelationID(ctx),
		))
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// root builds the outer router every request passes through: request ids,
// client addresses behind a proxy and panic recovery, then the API routes.
func (a *APIServer) root() chi.Router {
	root := chi.NewRouter()
	root.Use(chimiddleware.RequestID)
	root.Use(chimiddleware.RealIP)
	root.Use(chimiddleware.Recoverer)

	if a.routerCalled && a.router != nil {
		root.Mount("/", a.router)
	} else {
		a.mountRoutes(root)
	}
	return root
}

// ListenAndServe serves the API on addr until Shutdown is called.
func (a *APIServer) ListenAndServe(addr string) error {
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.root(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      a.client.Config().RequestTimeout() + writeGrace,
		IdleTimeout:       idleTimeout,
	}

	a.logger.Info("starting HTTP server", slog.String("addr", addr))
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains open requests. It is a no-op before ListenAndServe.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	a.logger.Info("shutting down HTTP server")
	return a.httpServer.Shutdown(ctx)
}

// Handler returns the full middleware stack and routes as an http.Handler
// for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	return a.root()
}
