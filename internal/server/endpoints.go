package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/sitemap"
	"git.home.luguber.info/inful/docserve/internal/version"
)

type healthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Uptime       float64   `json:"uptime"`
	Documents    int       `json:"documents"`
	Conflicts    int       `json:"conflicts"`
	IndexBuiltAt time.Time `json:"index_built_at"`
	CacheEntries int       `json:"cache_entries"`
	Version      string    `json:"version"`
}

type reindexResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	urls := s.svc.Sitemap(s.sitemapBase(r), s.opts.PathPrefix, s.opts.SitemapMaxURLs)

	var buf bytes.Buffer
	if err := sitemap.WriteXML(&buf, urls); err != nil {
		s.errorAdapter.WriteErrorResponse(w, r,
			ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode sitemap").Build())
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(sitemap.Robots(s.sitemapBase(r))))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Index().Snapshot()
	writeJSON(w, r, s.errorAdapter, http.StatusOK, healthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC(),
		Uptime:       time.Since(s.started).Seconds(),
		Documents:    snap.Len(),
		Conflicts:    len(snap.Conflicts()),
		IndexBuiltAt: snap.BuiltAt(),
		CacheEntries: s.svc.Cache().Len(),
		Version:      version.Version,
	})
}

// handleReindex drops every cached render and re-walks the content root.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	s.svc.Cache().Clear()
	if err := s.svc.Rebuild(r.Context(), "admin"); err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, r, s.errorAdapter, http.StatusOK, reindexResponse{
		Status:    "ok",
		Documents: s.svc.Index().Snapshot().Len(),
	})
}

// handleAsset serves non-Markdown files from the content tree, such as images
// referenced by documents. Hidden paths and directories are not served.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + chi.URLParam(r, "*"))
	if rel == "/" || strings.EqualFold(path.Ext(rel), ".md") || hasHiddenSegment(rel) {
		s.handleNotFound(w, r)
		return
	}
	full := filepath.Join(s.opts.ContentRoot, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Asset stat failed", logfields.Path(full), logfields.Error(err))
		}
		s.handleNotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, full)
}

func hasHiddenSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// baseURL is scheme://host of the request.
func (s *Server) baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if p := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); p == "https" || p == "http" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

func (s *Server) sitemapBase(r *http.Request) string {
	if s.opts.SitemapBaseURL != "" {
		return s.opts.SitemapBaseURL
	}
	return s.baseURL(r)
}

func writeJSON(w http.ResponseWriter, r *http.Request, adapter *ferrors.HTTPErrorAdapter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		adapter.WriteErrorResponse(w, r, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode response").Build())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
