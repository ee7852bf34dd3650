// Package render turns indexed markdown files into cached documents.
package render

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/docserve/internal/content"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/markdown"
	"git.home.luguber.info/inful/docserve/internal/slug"
)

// Document is a rendered page and its metadata.
type Document struct {
	Slug        string
	Title       string
	Description string
	Canonical   string
	NoIndex     bool
	OgImage     string
	SquareImage string
	Game        GameInfo

	HTML     string
	Headings []markdown.Heading
	Meta     frontmatter.FrontMatter

	Path               string
	Size               int64
	SourceLastModified time.Time
	ETag               string
}

// GameInfo holds the speedrun specific front matter fields.
type GameInfo struct {
	Name            string
	Leaderboard     string
	TimingMethod    string
	Downpatch       string
	AllowedVersions string
	WhereToBuy      string
	Platforms       []string
}

// Summary is the navigation facing projection of a document.
type Summary struct {
	Slug        string
	Title       string
	Description string
	Order       int
	NavHide     bool
	IsIndex     bool
}

func newDocument(e content.Entry, fm frontmatter.FrontMatter, res markdown.Result, size int64, mod time.Time) *Document {
	title := fm.StringOr(slug.Humanize(e.Slug), "title")
	folder := assetFolder(e)
	return &Document{
		Slug:        e.Slug,
		Title:       title,
		Description: fm.StringOr("", "description"),
		Canonical:   fm.StringOr("", "canonical"),
		NoIndex:     fm.Bool("noindex", false),
		OgImage:     ResolveAssetPath(fm.StringOr("", "og_image"), folder),
		SquareImage: ResolveAssetPath(fm.StringOr("", "square_image"), folder),
		Game: GameInfo{
			Name:            fm.StringOr(title, "game"),
			Leaderboard:     fm.StringOr("", "leaderboard"),
			TimingMethod:    fm.StringOr("", "timing_method"),
			Downpatch:       fm.StringOr("", "downpatch"),
			AllowedVersions: fm.StringOr("", "allowed_versions"),
			WhereToBuy:      fm.StringOr("", "where_to_buy"),
			Platforms:       fm.List("platforms"),
		},
		HTML:               res.HTML,
		Headings:           res.Headings,
		Meta:               fm,
		Path:               e.Path,
		Size:               size,
		SourceLastModified: mod.UTC(),
		ETag:               ComputeETag(size, mod),
	}
}

func newSummary(e content.Entry, fm frontmatter.FrontMatter) Summary {
	return Summary{
		Slug:        e.Slug,
		Title:       fm.StringOr(slug.Humanize(e.Slug), "nav_title", "title"),
		Description: fm.StringOr("", "description"),
		Order:       fm.Int("order", 0),
		NavHide:     fm.Bool("nav_hide", false),
		IsIndex:     e.IsIndex,
	}
}

// ComputeETag derives a strong validator from the file size and modification
// time. Content bytes are not hashed.
func ComputeETag(size int64, mod time.Time) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(size, 10) + ":" + strconv.FormatInt(mod.UTC().UnixNano(), 10)))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// assetFolder is the slug of the folder holding e. An index document is its
// own folder; guide/setup.md lives in guide.
func assetFolder(e content.Entry) string {
	if e.IsIndex {
		return e.Slug
	}
	parent, _ := slug.Parent(e.Slug)
	return parent
}

// ResolveAssetPath maps an asset reference to a URL. Absolute URLs and
// site-root paths are returned unchanged; anything else is relative to the
// folder slug under /content/.
func ResolveAssetPath(raw, folder string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(raw, "/") {
		return raw
	}

	base := slug.Normalize(folder)
	if strings.HasSuffix(strings.ToLower(base), "/index") {
		base = base[:len(base)-len("/index")]
	} else if strings.EqualFold(base, "index") {
		base = ""
	}
	raw = strings.ReplaceAll(raw, "\\", "/")
	if base == "" {
		return "/content/" + raw
	}
	return "/content/" + base + "/" + raw
}
