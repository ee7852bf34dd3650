// Package sitemap emits sitemap.xml and robots.txt from the content index.
package sitemap

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/docserve/internal/content"
	"git.home.luguber.info/inful/docserve/internal/util/sets"
)

// MaxURLs is the protocol limit for a single sitemap file.
const MaxURLs = 50000

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is one sitemap location.
type URL struct {
	Loc     string
	LastMod time.Time
}

// ClampMax bounds a configured URL count to [1, MaxURLs].
func ClampMax(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxURLs:
		return MaxURLs
	default:
		return n
	}
}

// URLs converts documents to absolute locations. Documents are ordered by slug,
// the root maps to "<base>/" and everything else to "<base><prefix>/<slug>". A
// trailing "/index" is stripped, duplicates keep their first occurrence and the
// result is capped at max, clamped to [1, MaxURLs].
func URLs(docs []content.Document, baseURL, prefix string, max int) []URL {
	baseURL = strings.TrimRight(baseURL, "/")
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	max = ClampMax(max)

	sorted := append([]content.Document(nil), docs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Slug < sorted[j].Slug })

	out := make([]URL, 0, min(len(sorted), max))
	seen := sets.WithCapacity[string](len(sorted))
	for _, d := range sorted {
		s := strings.Trim(d.Slug, "/")
		loc := baseURL + "/"
		if s != "" {
			loc = baseURL + prefix + "/" + s
		}
		if strings.HasSuffix(strings.ToLower(loc), "/index") {
			loc = loc[:len(loc)-len("/index")]
		}
		if !seen.TryAdd(loc) {
			continue
		}
		out = append(out, URL{Loc: loc, LastMod: d.LastModified})
		if len(out) == max {
			break
		}
	}
	return out
}

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []xmlEntry `xml:"url"`
}

type xmlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteXML writes a sitemap document.
func WriteXML(w io.Writer, urls []URL) error {
	set := urlset{Xmlns: xmlns, URLs: make([]xmlEntry, 0, len(urls))}
	for _, u := range urls {
		e := xmlEntry{Loc: u.Loc}
		if !u.LastMod.IsZero() {
			e.LastMod = u.LastMod.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, e)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(set)
}

// Robots returns a robots.txt that allows everything and points at the sitemap.
func Robots(baseURL string) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n"
}
