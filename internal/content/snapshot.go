package content

import (
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/docserve/internal/slug"
	"git.home.luguber.info/inful/docserve/internal/util/sets"
)

// Entry is one physical markdown file in the content tree.
type Entry struct {
	// Slug is the canonical slug (a folder index maps to its folder).
	Slug string
	// Key is the raw lookup key: the relative path without extension, lower-cased.
	Key     string
	Path    string
	ModTime time.Time
	Size    int64
	IsIndex bool
}

// Document is the public projection used for enumeration.
type Document struct {
	Slug         string
	Path         string
	LastModified time.Time
}

// Conflict records two files that claimed the same lookup key.
type Conflict struct {
	Slug   string
	Winner string
	Loser  string
}

// Folder is a directory of the content tree.
type Folder struct {
	Slug    string
	Index   *Entry
	Folders []string
	Files   []Entry
	// NavFile is the path of the folder's navigation override file, if any.
	NavFile string
	// Toc holds the parsed override. It is nil when there is no file or it
	// failed to parse.
	Toc []TocItem
}

// Snapshot is an immutable view of the content tree produced by one build.
type Snapshot struct {
	root      string
	builtAt   time.Time
	entries   map[string]Entry
	docs      []Entry
	folders   map[string]*Folder
	conflicts []Conflict
}

func emptySnapshot(root string) *Snapshot {
	return &Snapshot{
		root:    root,
		builtAt: time.Now(),
		entries: map[string]Entry{},
		folders: map[string]*Folder{},
	}
}

func lookupKey(s string) string {
	s = slug.Normalize(s)
	if len(s) >= len(markdownExt) && strings.EqualFold(s[len(s)-len(markdownExt):], markdownExt) {
		s = s[:len(s)-len(markdownExt)]
	}
	return strings.ToLower(strings.TrimRight(s, "/"))
}

// TryResolve finds the document for a slug. Matching is case-insensitive and a
// trailing ".md" is ignored.
func (s *Snapshot) TryResolve(raw string) (Entry, bool) {
	e, ok := s.entries[lookupKey(raw)]
	return e, ok
}

// Folder returns the folder with the given slug.
func (s *Snapshot) Folder(folderSlug string) (*Folder, bool) {
	f, ok := s.folders[strings.ToLower(slug.Normalize(folderSlug))]
	return f, ok
}

// HasIndex reports whether the folder exists and has a default document.
func (s *Snapshot) HasIndex(folderSlug string) bool {
	f, ok := s.Folder(folderSlug)
	return ok && f.Index != nil
}

// EnumerateAll lists every reachable physical document once, ordered by slug.
// Aliases are never listed.
func (s *Snapshot) EnumerateAll() []Document {
	out := make([]Document, 0, len(s.docs))
	for _, e := range s.docs {
		out = append(out, Document{Slug: e.Slug, Path: e.Path, LastModified: e.ModTime})
	}
	return out
}

// Entries returns the physical documents ordered by slug.
func (s *Snapshot) Entries() []Entry {
	return append([]Entry(nil), s.docs...)
}

// Conflicts lists duplicate claims detected during the build.
func (s *Snapshot) Conflicts() []Conflict {
	return append([]Conflict(nil), s.conflicts...)
}

// Len is the number of reachable physical documents.
func (s *Snapshot) Len() int { return len(s.docs) }

// Root returns the content root the snapshot was built from.
func (s *Snapshot) Root() string { return s.root }

// BuiltAt returns when the snapshot was produced.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// snapshotBuilder accumulates a walk before it is frozen into a Snapshot.
type snapshotBuilder struct {
	mapper  *slug.Mapper
	snap    *Snapshot
	claims  map[string][]Entry
	ordered []string
}

func newSnapshotBuilder(m *slug.Mapper) *snapshotBuilder {
	return &snapshotBuilder{
		mapper: m,
		snap:   emptySnapshot(m.Root()),
		claims: map[string][]Entry{},
	}
}

func (b *snapshotBuilder) folder(folderSlug string) *Folder {
	key := strings.ToLower(folderSlug)
	if f, ok := b.snap.folders[key]; ok {
		return f
	}
	f := &Folder{Slug: folderSlug}
	b.snap.folders[key] = f
	if parent, ok := slug.Parent(folderSlug); ok {
		p := b.folder(parent)
		p.Folders = append(p.Folders, folderSlug)
	}
	return f
}

func (b *snapshotBuilder) claim(key string, e Entry) {
	if _, seen := b.claims[key]; !seen {
		b.ordered = append(b.ordered, key)
	}
	b.claims[key] = append(b.claims[key], e)
}

func (b *snapshotBuilder) addDocument(folderSlug string, e Entry) {
	b.folder(folderSlug)
	b.claim(e.Key, e)
	if e.IsIndex {
		b.claim(strings.ToLower(folderSlug), e)
	}
}

// freeze resolves duplicate claims and attaches the surviving documents to
// their folders.
func (b *snapshotBuilder) freeze() *Snapshot {
	losers := sets.New[string]()
	for _, key := range b.ordered {
		claims := b.claims[key]
		winner := b.pick(claims)
		b.snap.entries[key] = winner
		for _, c := range claims {
			if c.Path == winner.Path {
				continue
			}
			losers.Add(c.Path)
			b.snap.conflicts = append(b.snap.conflicts, Conflict{Slug: key, Winner: winner.Path, Loser: c.Path})
		}
	}

	seen := sets.New[string]()
	for _, key := range b.ordered {
		e := b.snap.entries[key]
		if losers.Has(e.Path) || !seen.TryAdd(e.Path) {
			continue
		}
		b.snap.docs = append(b.snap.docs, e)

		f := b.folder(folderOf(e))
		if e.IsIndex {
			idx := e
			f.Index = &idx
		} else {
			f.Files = append(f.Files, e)
		}
	}

	sort.SliceStable(b.snap.docs, func(i, j int) bool { return b.snap.docs[i].Slug < b.snap.docs[j].Slug })
	for _, f := range b.snap.folders {
		sort.Strings(f.Folders)
		sort.SliceStable(f.Files, func(i, j int) bool { return f.Files[i].Slug < f.Files[j].Slug })
	}
	return b.snap
}

// pick chooses between files claiming the same key. A folder index and a
// direct file are ordered by the mapper's preference; otherwise the first path
// in walk order wins.
func (b *snapshotBuilder) pick(claims []Entry) Entry {
	winner := claims[0]
	for _, c := range claims[1:] {
		if c.IsIndex != winner.IsIndex && c.IsIndex == b.mapper.PreferIndexFiles() {
			winner = c
		}
	}
	return winner
}

// folderOf returns the slug of the folder holding the entry's file.
func folderOf(e Entry) string {
	if e.IsIndex {
		return e.Slug
	}
	p, _ := slug.Parent(e.Slug)
	return p
}
