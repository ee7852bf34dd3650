// Package nav assembles the sidebar navigation tree from the content index.
package nav

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/content"
	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/slug"
)

// Node is one entry of a navigation tree. Trees are built per request and
// owned by the caller.
type Node struct {
	Slug        string
	Title       string
	Description string
	// Href is set for external links declared in a navigation file.
	Href  string
	Order int

	IsIndex bool
	// Header marks a declared entry without a link.
	Header bool

	IsCurrent           bool
	IsAncestorOfCurrent bool
	Children            []*Node
}

// External reports whether the node links off-site.
func (n *Node) External() bool { return n.Href != "" }

// MetaSource provides the front matter summary of an indexed document.
type MetaSource interface {
	Summary(e content.Entry) (render.Summary, error)
}

// Option configures a Builder.
type Option func(*Builder)

// WithReadmeName sets the file name excluded from derived trees.
func WithReadmeName(name string) Option {
	return func(b *Builder) {
		if name = strings.TrimSpace(name); name != "" {
			b.readme = name
		}
	}
}

// WithOverrides enables or disables declared navigation files.
func WithOverrides(enabled bool) Option {
	return func(b *Builder) { b.overrides = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder builds navigation trees against the active index snapshot.
type Builder struct {
	index     *content.Index
	meta      MetaSource
	readme    string
	overrides bool
	logger    *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(ix *content.Index, meta MetaSource, opts ...Option) *Builder {
	b := &Builder{
		index:     ix,
		meta:      meta,
		readme:    "readme.md",
		overrides: true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildTree assembles the tree rooted at rootSlug and marks currentSlug. It
// returns nil when rootSlug is not a folder of the index.
func (b *Builder) BuildTree(rootSlug, currentSlug string) *Node {
	snap := b.index.Snapshot()
	rootSlug = slug.Normalize(rootSlug)

	folder, ok := snap.Folder(rootSlug)
	if !ok {
		return nil
	}

	root := &Node{Slug: folder.Slug, Title: slug.Humanize(folder.Slug), IsIndex: true}
	if folder.Index != nil {
		if sum, err := b.meta.Summary(*folder.Index); err == nil {
			root.Slug = sum.Slug
			root.Title = sum.Title
			root.Description = sum.Description
			root.Order = sum.Order
		}
	}

	if src := b.resolveSource(snap, folder.Slug, true); src.kind == sourceOverride {
		root.Children = declaredNodes(src.items)
	} else {
		root.Children = b.derivedChildren(snap, folder)
	}

	markCurrent(root, slug.Normalize(currentSlug))
	return root
}

// derivedChildren builds the children of folder from the filesystem. Subfolders
// without a visible index are transparent: their children are promoted.
func (b *Builder) derivedChildren(snap *content.Snapshot, folder *content.Folder) []*Node {
	nodes := make([]*Node, 0, len(folder.Folders)+len(folder.Files))

	for _, sub := range folder.Folders {
		child, ok := snap.Folder(sub)
		if !ok {
			continue
		}
		if node := b.folderNode(snap, child); node != nil {
			nodes = append(nodes, node)
			continue
		}
		nodes = append(nodes, b.childrenOf(snap, child)...)
	}

	for _, e := range folder.Files {
		if strings.EqualFold(filepath.Base(e.Path), b.readme) {
			continue
		}
		sum, ok := b.summary(e)
		if !ok || sum.NavHide {
			continue
		}
		nodes = append(nodes, &Node{
			Slug:        sum.Slug,
			Title:       sum.Title,
			Description: sum.Description,
			Order:       sum.Order,
		})
	}

	sortNodes(nodes)
	return nodes
}

// folderNode returns the node for a subfolder with a visible index, or nil.
func (b *Builder) folderNode(snap *content.Snapshot, folder *content.Folder) *Node {
	if folder.Index == nil {
		return nil
	}
	sum, ok := b.summary(*folder.Index)
	if !ok || sum.NavHide {
		return nil
	}
	return &Node{
		Slug:        sum.Slug,
		Title:       sum.Title,
		Description: sum.Description,
		Order:       sum.Order,
		IsIndex:     true,
		Children:    b.childrenOf(snap, folder),
	}
}

// childrenOf uses the folder's own navigation file when it has one.
func (b *Builder) childrenOf(snap *content.Snapshot, folder *content.Folder) []*Node {
	if src := b.resolveSource(snap, folder.Slug, false); src.kind == sourceOverride {
		return declaredNodes(src.items)
	}
	return b.derivedChildren(snap, folder)
}

func (b *Builder) summary(e content.Entry) (render.Summary, bool) {
	sum, err := b.meta.Summary(e)
	if err != nil {
		if ferrors.IsNotFound(err) {
			b.logger.Debug("Navigation entry vanished", logfields.Slug(e.Slug))
		} else {
			b.logger.Warn("Navigation entry skipped", logfields.Slug(e.Slug), logfields.Error(err))
		}
		return render.Summary{}, false
	}
	return sum, true
}

// NavRootSlug walks up from currentSlug to the nearest folder with an index
// document. The content root is the fallback.
func (b *Builder) NavRootSlug(currentSlug string) string {
	snap := b.index.Snapshot()
	s := slug.Normalize(currentSlug)
	for {
		if snap.HasIndex(s) {
			if f, ok := snap.Folder(s); ok {
				return f.Slug
			}
			return s
		}
		parent, ok := slug.Parent(s)
		if !ok {
			return ""
		}
		s = parent
	}
}

// TopLevel lists the visible top-level entries of the content root in
// navigation order.
func (b *Builder) TopLevel() []*Node {
	snap := b.index.Snapshot()
	root, ok := snap.Folder("")
	if !ok {
		return nil
	}
	nodes := make([]*Node, 0, len(root.Folders)+len(root.Files))
	for _, sub := range root.Folders {
		if f, ok := snap.Folder(sub); ok {
			if n := b.folderNode(snap, f); n != nil {
				n.Children = nil
				nodes = append(nodes, n)
			}
		}
	}
	for _, e := range root.Files {
		if strings.EqualFold(filepath.Base(e.Path), b.readme) {
			continue
		}
		if sum, ok := b.summary(e); ok && !sum.NavHide {
			nodes = append(nodes, &Node{Slug: sum.Slug, Title: sum.Title, Description: sum.Description, Order: sum.Order})
		}
	}
	sortNodes(nodes)
	return nodes
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return strings.ToLower(nodes[i].Title) < strings.ToLower(nodes[j].Title)
	})
}

// markCurrent flags the node matching current and every node on the path to it.
// It reports whether n is current or an ancestor of current.
func markCurrent(n *Node, current string) bool {
	if !n.Header && !n.External() && strings.EqualFold(n.Slug, current) {
		n.IsCurrent = true
	}
	for _, c := range n.Children {
		if markCurrent(c, current) {
			n.IsAncestorOfCurrent = true
		}
	}
	if n.IsCurrent {
		n.IsAncestorOfCurrent = true
	}
	return n.IsAncestorOfCurrent
}
