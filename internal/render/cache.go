package render

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/maypok86/otter/v2"

	"git.home.luguber.info/inful/docserve/internal/content"
	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/markdown"
	"git.home.luguber.info/inful/docserve/internal/metrics"
)

// Resolver is the part of the content index the cache needs.
type Resolver interface {
	TryResolve(slug string) (content.Entry, bool)
	EnumerateAll() []content.Document
}

type docLine struct {
	modTime time.Time
	doc     *Document
}

type summaryLine struct {
	modTime time.Time
	summary Summary
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the rendered document and summary caches. Zero or
// less is unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxEntries = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Cache) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Cache renders documents on demand and keeps the result keyed by physical
// path. A cached document is served while the file's modification time is
// unchanged. Concurrent misses for the same file may both render; the last
// store wins.
type Cache struct {
	resolver   Resolver
	renderer   markdown.Renderer
	maxEntries int
	logger     *slog.Logger
	recorder   metrics.Recorder

	docs *otter.Cache[string, docLine]
	meta *otter.Cache[string, summaryLine]
}

// NewCache creates a render cache over the resolver.
func NewCache(resolver Resolver, renderer markdown.Renderer, opts ...Option) *Cache {
	c := &Cache{
		resolver: resolver,
		renderer: renderer,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}

	docOpts := &otter.Options[string, docLine]{}
	metaOpts := &otter.Options[string, summaryLine]{}
	if c.maxEntries > 0 {
		docOpts.MaximumSize = c.maxEntries
		metaOpts.MaximumSize = c.maxEntries
	} else {
		c.logger.Warn("Render and summary caches are unbounded; set cache.max_entries to cap memory use")
	}
	c.docs = otter.Must(docOpts)
	c.meta = otter.Must(metaOpts)
	return c
}

// Unbounded reports whether the caches have no size ceiling.
func (c *Cache) Unbounded() bool { return c.maxEntries <= 0 }

// Len is the approximate number of cached rendered documents.
func (c *Cache) Len() int { return c.docs.EstimatedSize() }

// Clear drops every cached document and summary.
func (c *Cache) Clear() {
	c.docs.InvalidateAll()
	c.meta.InvalidateAll()
	c.recorder.SetCacheEntries(0)
}

// GetOrRender returns the document for slug. found is false when the slug does
// not resolve or the file has vanished; that is not an error. Filesystem and
// render failures are returned as classified errors.
func (c *Cache) GetOrRender(ctx context.Context, s string) (doc *Document, found bool, err error) {
	entry, ok := c.resolver.TryResolve(s)
	if !ok {
		c.notFound(s)
		return nil, false, nil
	}

	info, err := os.Stat(entry.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.docs.Invalidate(entry.Path)
			c.notFound(s)
			return nil, false, nil
		}
		return nil, false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat document").
			WithContext("slug", entry.Slug).
			Build()
	}

	if line, ok := c.docs.GetIfPresent(entry.Path); ok && line.modTime.Equal(info.ModTime()) {
		c.recorder.IncCacheHit()
		c.logger.Debug("Render cache", logfields.Slug(entry.Slug), logfields.Cache(logfields.CacheHit))
		return line.doc, true, nil
	}
	c.recorder.IncCacheMiss()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	doc, stable, err := c.render(entry)
	if err != nil {
		if ferrors.IsNotFound(err) {
			c.notFound(s)
			return nil, false, nil
		}
		return nil, false, err
	}
	elapsed := time.Since(start)
	c.recorder.ObserveRender(elapsed)

	if stable {
		c.docs.Set(entry.Path, docLine{modTime: doc.SourceLastModified, doc: doc})
		c.recorder.SetCacheEntries(c.Len())
	}
	c.logger.Debug("Render cache",
		logfields.Slug(entry.Slug),
		logfields.Cache(logfields.CacheMiss),
		slog.Bool("stored", stable),
		logfields.DurationMS(elapsed))
	return doc, true, nil
}

// render reads and renders one file. stable is false when the file changed
// while it was being read; such a result is served but not cached.
func (c *Cache) render(e content.Entry) (*Document, bool, error) {
	raw, before, err := readFile(e.Path)
	if err != nil {
		return nil, false, err
	}

	fm, body := frontmatter.Parse(string(raw))
	res, err := c.renderer.Render([]byte(body), assetFolder(e))
	if err != nil {
		return nil, false, ferrors.WrapError(err, ferrors.CategoryRender, "render markdown").
			WithContext("slug", e.Slug).
			Build()
	}

	doc := newDocument(e, fm, res, before.Size(), before.ModTime())

	after, err := os.Stat(e.Path)
	stable := err == nil && after.ModTime().Equal(before.ModTime()) && after.Size() == before.Size()
	return doc, stable, nil
}

// Summary returns the navigation summary for an indexed entry. Summaries are
// cached separately from rendered documents and only need the front matter.
func (c *Cache) Summary(e content.Entry) (Summary, error) {
	info, err := os.Stat(e.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.meta.Invalidate(e.Path)
			return Summary{}, ferrors.NotFoundError("document not found").WithContext("slug", e.Slug).Build()
		}
		return Summary{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat document").
			WithContext("slug", e.Slug).
			Build()
	}
	if line, ok := c.meta.GetIfPresent(e.Path); ok && line.modTime.Equal(info.ModTime()) {
		return line.summary, nil
	}

	raw, before, err := readFile(e.Path)
	if err != nil {
		return Summary{}, err
	}
	fm, _ := frontmatter.Parse(string(raw))
	sum := newSummary(e, fm)
	c.meta.Set(e.Path, summaryLine{modTime: before.ModTime(), summary: sum})
	return sum, nil
}

// Warm renders every enumerated document so first requests hit the cache. It
// stops early when ctx is cancelled and otherwise continues past failures,
// returning them joined.
func (c *Cache) Warm(ctx context.Context) (int, error) {
	start := time.Now()
	var (
		rendered int
		errs     []error
	)
	for _, d := range c.resolver.EnumerateAll() {
		if err := ctx.Err(); err != nil {
			return rendered, err
		}
		_, found, err := c.GetOrRender(ctx, d.Slug)
		switch {
		case err != nil:
			c.logger.Warn("Cache warm failed", logfields.Slug(d.Slug), logfields.Error(err))
			errs = append(errs, err)
		case found:
			rendered++
		}
	}
	c.logger.Info("Render cache warmed",
		logfields.Count(rendered),
		slog.Int("failed", len(errs)),
		logfields.DurationMS(time.Since(start)))
	return rendered, errors.Join(errs...)
}

func (c *Cache) notFound(s string) {
	c.recorder.IncNotFound()
	c.logger.Debug("Document not found", logfields.Slug(s))
}

// readFile opens path, stats the open handle and reads it fully.
func readFile(path string) ([]byte, fs.FileInfo, error) {
	// #nosec G304 -- path comes from the content index
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ferrors.NotFoundError("document not found").WithContext("path", path).Build()
		}
		return nil, nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "open document").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat document").
			WithContext("path", path).
			Build()
	}
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read document").
			WithContext("path", path).
			Build()
	}
	return raw, info, nil
}
