package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/markdown"
	"git.home.luguber.info/inful/docserve/internal/nav"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/site"
	"git.home.luguber.info/inful/docserve/internal/slug"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// navItem is a navigation node with its link resolved for the current host.
type navItem struct {
	Title    string
	URL      string
	External bool
	Header   bool
	Current  bool
	Open     bool
	Children []navItem
}

type pageView struct {
	Site        SiteInfo
	Title       string
	Description string
	Canonical   string
	OgImage     string
	NoIndex     bool
	Status      int

	Doc      *render.Document
	Body     template.HTML
	Headings []markdown.Heading
	NavTitle string
	NavURL   string
	Nav      []navItem
	Guides   []navItem

	RequestID string
	Year      int
}

type pageRenderer struct {
	tmpl   *template.Template
	prefix string
	site   SiteInfo
}

func newPageRenderer(prefix string, info SiteInfo) *pageRenderer {
	tmpl := template.Must(template.New("layout").ParseFS(templateFS, "templates/*.tmpl"))
	return &pageRenderer{tmpl: tmpl, prefix: prefix, site: info}
}

// url returns the path serving slug s on a host folded into folder.
func (p *pageRenderer) url(s, folder string) string {
	s = slug.Unfold(s, folder)
	if s == "" {
		return "/"
	}
	return p.prefix + "/" + s
}

func (p *pageRenderer) navItems(nodes []*nav.Node, folder string) []navItem {
	if len(nodes) == 0 {
		return nil
	}
	items := make([]navItem, 0, len(nodes))
	for _, n := range nodes {
		it := navItem{
			Title:    n.Title,
			External: n.External(),
			Header:   n.Header,
			Current:  n.IsCurrent,
			Open:     n.IsAncestorOfCurrent,
			Children: p.navItems(n.Children, folder),
		}
		switch {
		case it.External:
			it.URL = n.Href
		case !it.Header:
			it.URL = p.url(n.Slug, folder)
		}
		items = append(items, it)
	}
	return items
}

func (p *pageRenderer) execute(view *pageView) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "base", view); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to execute page template").Build()
	}
	return buf.Bytes(), nil
}

func (s *Server) newView(r *http.Request) *pageView {
	return &pageView{
		Site:      s.opts.Site,
		Status:    http.StatusOK,
		RequestID: middleware.GetReqID(r.Context()),
		Year:      time.Now().Year(),
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "*")
	page, found, err := s.svc.Page(r.Context(), site.Request{Slug: requested, Host: r.Host})
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if !found {
		s.handleNotFound(w, r)
		return
	}

	doc := page.Doc
	h := w.Header()
	h.Set("ETag", doc.ETag)
	h.Set("Last-Modified", doc.SourceLastModified.UTC().Format(http.TimeFormat))
	h.Set("Cache-Control", "public, max-age="+strconv.Itoa(s.opts.CacheSeconds))
	if notModified(r, doc.ETag, doc.SourceLastModified) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	base := s.baseURL(r)
	view := s.newView(r)
	view.Title = doc.Title
	view.Description = doc.Description
	view.Canonical = doc.Canonical
	if view.Canonical == "" {
		view.Canonical = base + r.URL.Path
	}
	view.OgImage = absoluteURL(base, firstNonEmpty(doc.OgImage, s.opts.Site.DefaultOgImage))
	view.NoIndex = doc.NoIndex
	view.Doc = doc
	view.Body = template.HTML(doc.HTML) //nolint:gosec // sanitised by the markdown renderer
	view.Headings = doc.Headings
	if page.Nav != nil {
		view.NavTitle = page.Nav.Title
		view.NavURL = s.pages.url(page.Nav.Slug, page.Folder)
		view.Nav = s.pages.navItems(page.Nav.Children, page.Folder)
	}
	view.Guides = s.pages.navItems(s.svc.Guides(), page.Folder)

	s.writePage(w, r, view)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Page not found", logfields.Path(r.URL.Path), logfields.Host(r.Host))
	view := s.newView(r)
	view.Status = http.StatusNotFound
	view.Title = "Page not found"
	view.NoIndex = true
	view.Guides = s.pages.navItems(s.svc.Guides(), "")
	w.Header().Set("Cache-Control", "no-store")
	s.writePage(w, r, view)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, view *pageView) {
	body, err := s.pages.execute(view)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(view.Status)
	_, _ = w.Write(body)
}

// notModified evaluates If-None-Match, falling back to If-Modified-Since when
// no entity tag was sent.
func notModified(r *http.Request, etag string, lastModified time.Time) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		for _, candidate := range strings.Split(inm, ",") {
			candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
			if candidate == "*" || candidate == etag {
				return true
			}
		}
		return false
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		t, err := http.ParseTime(ims)
		if err == nil && !lastModified.Truncate(time.Second).After(t) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func absoluteURL(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return base + "/" + strings.TrimLeft(ref, "/")
}
