// Package site composes the slug mapper, content index, render cache and
// navigation builder into the page lookup used by the HTTP layer and the CLI.
package site

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docserve/internal/content"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/nav"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/sitemap"
	"git.home.luguber.info/inful/docserve/internal/slug"
)

// Request identifies a page by requested slug and Host header.
type Request struct {
	Slug string
	Host string
}

// Page is a rendered document with its sidebar.
type Page struct {
	// Slug is the effective slug after subdomain folding.
	Slug string
	// Folder is the subdomain folder the request was folded into, if any.
	Folder  string
	Doc     *render.Document
	NavRoot string
	Nav     *nav.Node
}

// Option configures a Service.
type Option func(*Service)

// WithWarmOnRebuild renders every document after each successful rebuild.
func WithWarmOnRebuild(enabled bool) Option {
	return func(s *Service) { s.warm = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// Service answers page requests.
type Service struct {
	mapper *slug.Mapper
	index  *content.Index
	cache  *render.Cache
	nav    *nav.Builder

	warm     bool
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New creates a Service.
func New(m *slug.Mapper, ix *content.Index, c *render.Cache, nb *nav.Builder, opts ...Option) *Service {
	s := &Service{
		mapper:   m,
		index:    ix,
		cache:    c,
		nav:      nb,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page resolves a request to a rendered page. found is false when no document
// matches; that is not an error.
func (s *Service) Page(ctx context.Context, req Request) (*Page, bool, error) {
	effective := s.mapper.ApplySubdomain(req.Slug, req.Host)

	doc, found, err := s.cache.GetOrRender(ctx, effective)
	if err != nil || !found {
		return nil, found, err
	}

	root := s.nav.NavRootSlug(doc.Slug)
	return &Page{
		Slug:    effective,
		Folder:  s.mapper.FolderFor(req.Host),
		Doc:     doc,
		NavRoot: root,
		Nav:     s.nav.BuildTree(root, doc.Slug),
	}, true, nil
}

// Guides lists the visible top-level sections.
func (s *Service) Guides() []*nav.Node { return s.nav.TopLevel() }

// Tree builds a navigation tree outside of a page request.
func (s *Service) Tree(rootSlug, currentSlug string) *nav.Node {
	return s.nav.BuildTree(rootSlug, currentSlug)
}

// NavRoot returns the slug whose tree is shown next to currentSlug.
func (s *Service) NavRoot(currentSlug string) string { return s.nav.NavRootSlug(currentSlug) }

// Sitemap lists the URLs of the active index.
func (s *Service) Sitemap(baseURL, prefix string, max int) []sitemap.URL {
	return sitemap.URLs(s.index.EnumerateAll(), baseURL, prefix, max)
}

// Index exposes the content index.
func (s *Service) Index() *content.Index { return s.index }

// Cache exposes the render cache.
func (s *Service) Cache() *render.Cache { return s.cache }

// Rebuild re-walks the content root and swaps in the new index. With warming
// enabled the render cache is refilled afterwards; warm failures are logged and
// do not fail the rebuild.
func (s *Service) Rebuild(ctx context.Context, reason string) error {
	start := time.Now()
	snap, err := s.index.Build(ctx)
	if err != nil {
		s.recorder.IncRebuild(metrics.RebuildFailed)
		s.logger.Error("Index rebuild failed", logfields.Reason(reason), logfields.Error(err))
		return err
	}
	s.recorder.IncRebuild(metrics.RebuildSuccess)
	s.logger.Info("Index rebuilt",
		logfields.Reason(reason),
		logfields.Count(snap.Len()),
		logfields.DurationMS(time.Since(start)))

	if s.warm {
		if _, err := s.cache.Warm(ctx); err != nil {
			s.logger.Warn("Cache warm incomplete", logfields.Error(err))
		}
	}
	s.recorder.SetCacheEntries(s.cache.Len())
	return nil
}
