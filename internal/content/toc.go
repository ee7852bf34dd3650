package content

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docserve/internal/slug"
)

// TocItem is one entry of a folder's navigation override file.
type TocItem struct {
	Name string
	// Slug is the content slug the item links to. Empty for external links and
	// for items without an href.
	Slug string
	// URL is set for absolute http(s) links.
	URL    string
	Linked bool
	Items  []TocItem
}

type tocNode struct {
	Name  string    `yaml:"name"`
	Href  *string   `yaml:"href"`
	Items []tocNode `yaml:"items"`
}

// LoadToc reads and resolves a navigation override file for folderSlug.
func LoadToc(file, folderSlug string) ([]TocItem, error) {
	// #nosec G304 -- path comes from walking the content root
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return ParseToc(data, folderSlug)
}

// ParseToc parses a YAML list of {name, href, items} nodes. Relative hrefs are
// resolved against folderSlug.
func ParseToc(data []byte, folderSlug string) ([]TocItem, error) {
	var nodes []tocNode
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse navigation file: %w", err)
	}
	return resolveToc(nodes, slug.Normalize(folderSlug)), nil
}

func resolveToc(nodes []tocNode, folderSlug string) []TocItem {
	out := make([]TocItem, 0, len(nodes))
	for _, n := range nodes {
		item := TocItem{Name: strings.TrimSpace(n.Name)}
		if item.Name == "" {
			item.Name = "Untitled"
		}
		if n.Href != nil {
			item.Slug, item.URL = ResolveHref(folderSlug, *n.Href)
			item.Linked = true
		}
		item.Items = resolveToc(n.Items, folderSlug)
		out = append(out, item)
	}
	return out
}

// ResolveHref turns an override href into a content slug or an external URL.
// Absolute http(s) links are returned as url. A leading "/" is relative to the
// content root, anything else to folderSlug. ".md" and a trailing "/index" are
// stripped.
func ResolveHref(folderSlug, href string) (s string, url string) {
	href = strings.TrimSpace(strings.ReplaceAll(href, "\\", "/"))
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return "", href
	}

	var p string
	if strings.HasPrefix(href, "/") {
		p = path.Clean(href)
	} else {
		p = path.Clean("/" + folderSlug + "/" + href)
	}
	p = slug.Normalize(p)

	if strings.HasSuffix(strings.ToLower(p), markdownExt) {
		p = p[:len(p)-len(markdownExt)]
	}
	switch {
	case strings.EqualFold(p, "index"):
		p = ""
	case strings.HasSuffix(strings.ToLower(p), "/index"):
		p = p[:len(p)-len("/index")]
	}
	return p, ""
}
