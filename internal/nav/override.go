package nav

import (
	"git.home.luguber.info/inful/docserve/internal/content"
	"git.home.luguber.info/inful/docserve/internal/slug"
)

type sourceKind int

const (
	sourceDerived sourceKind = iota
	sourceOverride
)

// source is the navigation source chosen for one folder.
type source struct {
	kind   sourceKind
	folder string
	items  []content.TocItem
}

// resolveSource picks between the derived tree and a declared navigation file.
// With inherit set, ancestors are searched outwards and the nearest declared
// file wins; otherwise only the folder itself is considered.
func (b *Builder) resolveSource(snap *content.Snapshot, folderSlug string, inherit bool) source {
	if !b.overrides {
		return source{kind: sourceDerived, folder: folderSlug}
	}
	s := slug.Normalize(folderSlug)
	for {
		if f, ok := snap.Folder(s); ok && f.Toc != nil {
			return source{kind: sourceOverride, folder: f.Slug, items: f.Toc}
		}
		if !inherit {
			break
		}
		parent, ok := slug.Parent(s)
		if !ok {
			break
		}
		s = parent
	}
	return source{kind: sourceDerived, folder: folderSlug}
}

// declaredNodes converts declared items to nodes, keeping the declared order.
func declaredNodes(items []content.TocItem) []*Node {
	nodes := make([]*Node, 0, len(items))
	for _, it := range items {
		n := &Node{
			Title:    it.Name,
			Href:     it.URL,
			Header:   !it.Linked,
			Children: declaredNodes(it.Items),
		}
		if it.Linked && it.URL == "" {
			n.Slug = it.Slug
		}
		nodes = append(nodes, n)
	}
	return nodes
}
