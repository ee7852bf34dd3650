// Package server is the HTTP presentation layer: rendered pages, sitemap,
// robots.txt, health, metrics and admin endpoints on a chi router.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/site"
)

const shutdownTimeout = 5 * time.Second

// SiteInfo carries branding rendered into every page.
type SiteInfo struct {
	Name           string
	Tagline        string
	DefaultOgImage string
	TwitterHandle  string
	GitHubURL      string
	ThemeColor     string
}

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// CacheSeconds is the max-age of page responses.
	CacheSeconds int

	// PathPrefix is where documents are mounted, e.g. "/guide".
	PathPrefix string
	// ContentRoot is served under /content for images next to documents.
	ContentRoot string

	SitemapBaseURL string
	SitemapMaxURLs int

	HealthPath string
	// MetricsPath and MetricsHandler expose metrics when both are set.
	MetricsPath    string
	MetricsHandler http.Handler

	// AdminToken enables the admin endpoints and is required as a bearer token.
	AdminToken string

	Site SiteInfo
}

// Server serves a site.Service over HTTP.
type Server struct {
	svc          *site.Service
	opts         Options
	logger       *slog.Logger
	errorAdapter *ferrors.HTTPErrorAdapter
	pages        *pageRenderer
	router       chi.Router
	started      time.Time
}

// New builds the router for svc.
func New(svc *site.Service, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:          svc,
		opts:         opts,
		logger:       logger,
		errorAdapter: ferrors.NewHTTPErrorAdapter(logger),
		pages:        newPageRenderer(opts.PathPrefix, opts.Site),
		started:      time.Now(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(logRequests(s.logger))
	r.Use(recoverPanics(s.logger, s.errorAdapter))
	r.Use(securityHeaders)
	r.Use(middleware.GetHead)

	r.NotFound(s.handleNotFound)

	r.Get("/", s.handlePage)
	if s.opts.PathPrefix != "" {
		r.Get(s.opts.PathPrefix, s.handlePage)
		r.Get(s.opts.PathPrefix+"/*", s.handlePage)
	} else {
		r.Get("/*", s.handlePage)
	}

	if s.opts.ContentRoot != "" {
		r.Get("/content/*", s.handleAsset)
	}

	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/robots.txt", s.handleRobots)

	if s.opts.HealthPath != "" {
		r.Get(s.opts.HealthPath, s.handleHealth)
	}
	if s.opts.MetricsPath != "" && s.opts.MetricsHandler != nil {
		r.Handle(s.opts.MetricsPath, s.opts.MetricsHandler)
	}

	if s.opts.AdminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireToken(s.opts.AdminToken, s.errorAdapter))
			r.Post("/reindex", s.handleReindex)
		})
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to bind HTTP listener").
			WithContext("addr", s.opts.Addr).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown incomplete", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("HTTP server stopped")
		return nil
	}
}
