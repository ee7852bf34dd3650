// Package slug translates between URL slugs and files under the content root.
package slug

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docserve/internal/util/sets"
)

const markdownExt = ".md"

// Options configures a Mapper.
type Options struct {
	Root             string
	DefaultDocument  string
	PreferIndexFiles bool

	SubdomainFolders  bool
	PrimaryDomain     string
	IgnoredSubdomains []string
}

// Mapper maps slugs to candidate file paths and back.
type Mapper struct {
	root             string
	defaultDocument  string
	preferIndexFiles bool

	subdomainFolders bool
	primaryDomain    string
	ignored          sets.Set[string]
}

// NewMapper builds a Mapper. The root is made absolute when possible.
func NewMapper(opts Options) *Mapper {
	root := filepath.Clean(opts.Root)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	doc := strings.TrimSpace(opts.DefaultDocument)
	if doc == "" {
		doc = "index.md"
	}
	ignored := sets.WithCapacity[string](len(opts.IgnoredSubdomains))
	for _, s := range opts.IgnoredSubdomains {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			ignored.Add(s)
		}
	}
	return &Mapper{
		root:             root,
		defaultDocument:  doc,
		preferIndexFiles: opts.PreferIndexFiles,
		subdomainFolders: opts.SubdomainFolders,
		primaryDomain:    strings.ToLower(strings.Trim(strings.TrimSpace(opts.PrimaryDomain), ".")),
		ignored:          ignored,
	}
}

// Root returns the absolute content root.
func (m *Mapper) Root() string { return m.root }

// DefaultDocument returns the file name that acts as a folder's own page.
func (m *Mapper) DefaultDocument() string { return m.defaultDocument }

// PreferIndexFiles reports whether folder indexes win over direct files.
func (m *Mapper) PreferIndexFiles() bool { return m.preferIndexFiles }

// IsDefaultDocument reports whether name is the default document, ignoring case.
func (m *Mapper) IsDefaultDocument(name string) bool {
	return strings.EqualFold(name, m.defaultDocument)
}

// Normalize trims whitespace and slashes, turns backslashes into forward slashes
// and drops empty, "." and ".." segments so a slug can never leave the root.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.Trim(s, "/")
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "/")
	kept := parts[:0]
	for _, p := range parts {
		switch strings.TrimSpace(p) {
		case "", ".", "..":
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

// MapToPath returns the file a slug refers to. The empty slug maps to the default
// document at the root. Otherwise the direct file and the folder index are probed
// in preference order; when neither exists the preferred candidate is returned so
// callers can run their own existence check.
func (m *Mapper) MapToPath(s string) string {
	s = Normalize(s)
	if s == "" {
		return filepath.Join(m.root, m.defaultDocument)
	}

	direct := m.directPath(s)
	index := m.IndexPath(s)

	first, second := direct, index
	if m.preferIndexFiles {
		first, second = index, direct
	}
	if isFile(first) {
		return first
	}
	if isFile(second) {
		return second
	}
	return first
}

// PathToSlug is the inverse of MapToPath. A default document maps to its folder.
func (m *Mapper) PathToSlug(path string) string {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return ""
	}

	dir, name := "", rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		dir, name = rel[:i], rel[i+1:]
	}
	if m.IsDefaultDocument(name) {
		return strings.Trim(dir, "/")
	}
	if strings.HasSuffix(strings.ToLower(rel), markdownExt) {
		rel = rel[:len(rel)-len(markdownExt)]
	}
	return strings.Trim(rel, "/")
}

// FolderPath returns the directory for a folder slug.
func (m *Mapper) FolderPath(s string) string {
	s = Normalize(s)
	if s == "" {
		return m.root
	}
	return filepath.Join(m.root, filepath.FromSlash(s))
}

// IndexPath returns the default document path inside the folder for s.
func (m *Mapper) IndexPath(s string) string {
	return filepath.Join(m.FolderPath(s), m.defaultDocument)
}

func (m *Mapper) directPath(s string) string {
	return filepath.Join(m.root, filepath.FromSlash(s)+markdownExt)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// Humanize builds a display title from the last slug segment: hyphen separated
// words with their first letter upper-cased. The root is "Home".
func Humanize(s string) string {
	s = Normalize(s)
	if s == "" {
		return "Home"
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' })
	if len(words) == 0 {
		return "Document"
	}
	caser := cases.Title(language.Und, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(strings.TrimSpace(w))
	}
	return strings.Join(words, " ")
}

// Parent returns the slug one segment up. The root has no parent.
func Parent(s string) (string, bool) {
	s = Normalize(s)
	if s == "" {
		return "", false
	}
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return "", true
	}
	return s[:i], true
}

// Join appends child segments to a slug.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = Normalize(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
