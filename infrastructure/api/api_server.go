package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	apimiddleware "github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/middleware"
	v1 "github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/v1"
	mcpinternal "github.com/codeBunny2022/CentrAlignWebapp/internal/mcp"
)

// APIServer provides an HTTP API backed by a centralign Client.
type APIServer struct {
	client       *centralign.Client
	corsOrigins  []string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given centralign Client.
// corsOrigins configures which browser origins may call the API; an empty
// slice allows all. Registration, login, health probes, MCP, and docs are
// open; everything else requires a bearer session token.
func NewAPIServer(client *centralign.Client, corsOrigins []string) *APIServer {
	return &APIServer{
		client:      client,
		corsOrigins: corsOrigins,
		logger:      client.Logger(),
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

// mountRoutes wires up all v1 API routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	authRouter := v1.NewAuthRouter(c)
	formsRouter := v1.NewFormsRouter(c)
	contextRouter := v1.NewContextRouter(c)
	tasksRouter := v1.NewTasksRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		// Open routes — registration and login mint the tokens everything
		// else requires.
		r.Mount("/auth", authRouter.Routes())

		// Authenticated routes — the bearer token resolves the user all
		// reads and writes are scoped to.
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.RequireUser(c.Auth, a.logger))
			r.Get("/me", authRouter.Me)
			r.Mount("/forms", formsRouter.Routes())
			r.Mount("/context", contextRouter.Routes())
			r.Mount("/tasks", tasksRouter.Routes())
		})
	})

	router.Get("/healthz", a.Healthz)
	router.Get("/readyz", a.Readyz)

	// MCP (Model Context Protocol) endpoint — no timeout middleware.
	// MCP uses streaming responses and manages its own session state via
	// response headers, which is incompatible with chi's Timeout middleware
	// that wraps the ResponseWriter.
	mcpSrv := mcpinternal.NewServer(c.Retrieval, c.Forms, "1.0.0", a.logger)
	httpHandler := server.NewStreamableHTTPServer(mcpSrv.MCPServer())
	router.Mount("/mcp", httpHandler)

	router.Mount("/docs", a.DocsRouter("/docs/openapi.json").Routes())
}

// Healthz handles GET /healthz.
func (a *APIServer) Healthz(w http.ResponseWriter, r *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz. Ready means the database answers a ping.
func (a *APIServer) Readyz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.client.DB().GORM().DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		apimiddleware.WriteError(w, r, apimiddleware.NewServerError(http.StatusServiceUnavailable, "database unavailable"), a.logger)
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// DocsRouter returns a router for Swagger UI and OpenAPI spec.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
