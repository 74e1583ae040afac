// Package server assembles the router, middleware stack and API.
package server

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/janisto/cicd-demo/internal/config"
	"github.com/janisto/cicd-demo/internal/http/health"
	"github.com/janisto/cicd-demo/internal/http/routes"
	applog "github.com/janisto/cicd-demo/internal/platform/logging"
	"github.com/janisto/cicd-demo/internal/platform/metrics"
	appmiddleware "github.com/janisto/cicd-demo/internal/platform/middleware"
	"github.com/janisto/cicd-demo/internal/platform/ratelimit"
	"github.com/janisto/cicd-demo/internal/platform/respond"
)

const (
	Title       = "CI/CD Demo API"
	Description = "Complete CI/CD pipeline demonstration"

	DocsPath    = "/docs"
	MetricsPath = "/metrics"

	maxHeaderBytes = 64 << 10
)

// Server owns the HTTP handler tree.
type Server struct {
	cfg    *config.Config
	router *chi.Mux
}

// New builds the full application for cfg. version is reported in the
// OpenAPI document and the app_build_info metric.
func New(cfg *config.Config, version string) *Server {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry, version)

	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.AllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For. Only deploy behind a
		// proxy that overwrites them (Cloud Run, nginx).
		chimiddleware.RealIP,
		chimiddleware.RequestSize(cfg.MaxRequestBytes),
		applog.RequestLogger(),
		applog.AccessLogger(),
		m.Middleware(),
		respond.Recoverer(),
		// Redirect before limiting so "/health/" reaches the exemption.
		respond.RedirectTrailingSlash(),
		ratelimit.Middleware(cfg.RateLimitRPS, cfg.RateLimitBurst, health.Path, MetricsPath),
	)

	humaCfg := huma.DefaultConfig(Title, version)
	humaCfg.Info.Description = Description
	humaCfg.DocsPath = DocsPath
	// Without the $schema link transformer bodies carry only declared fields.
	humaCfg.CreateHooks = nil
	api := humachi.New(router, humaCfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)

	routes.Register(api)
	router.Handle(MetricsPath, metrics.Handler(registry))

	return &Server{cfg: cfg, router: router}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns an http.Server for the handler with the configured
// timeouts. net/http's own errors are routed through zap.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
		ErrorLog:          zap.NewStdLog(applog.Logger().Named("http")),
	}
}

// addCBORContent advertises application/cbor wherever an operation accepts
// or returns application/json.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}
