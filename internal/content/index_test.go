package content

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/slug"
	"git.home.luguber.info/inful/docserve/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIndex(t *testing.T, root string, preferIndex bool) *Index {
	t.Helper()
	m := slug.NewMapper(slug.Options{Root: root, PreferIndexFiles: preferIndex})
	return NewIndex(m, WithLogger(quietLogger()))
}

func TestBuild_MissingRootYieldsEmptyIndex(t *testing.T) {
	ix := newTestIndex(t, filepath.Join(t.TempDir(), "missing"), true)

	snap, err := ix.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, snap.Len())
	require.Empty(t, ix.EnumerateAll())

	_, ok := ix.TryResolve("")
	require.False(t, ok)
}

func TestBuild_IndexAliasAndRawKey(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "# Home")
	idx := testutil.WriteFile(t, root, "guide/halo/index.md", "# Halo")
	setup := testutil.WriteFile(t, root, "guide/halo/Setup.md", "# Setup")

	ix := newTestIndex(t, root, true)
	_, err := ix.Build(context.Background())
	require.NoError(t, err)

	for _, s := range []string{"guide/halo", "guide/halo/index", "/Guide/Halo/", "guide/halo/index.md"} {
		e, ok := ix.TryResolve(s)
		require.True(t, ok, s)
		require.Equal(t, idx, e.Path, s)
		require.Equal(t, "guide/halo", e.Slug, s)
		require.True(t, e.IsIndex)
	}

	e, ok := ix.TryResolve("guide/halo/setup")
	require.True(t, ok)
	require.Equal(t, setup, e.Path)
	require.Equal(t, "guide/halo/Setup", e.Slug)
	require.Equal(t, "guide/halo/setup", e.Key)

	home, ok := ix.TryResolve("")
	require.True(t, ok)
	require.Equal(t, "", home.Slug)
}

func TestEnumerateAll_EachPhysicalDocumentOnce(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "a/index.md", "")
	testutil.WriteFile(t, root, "a/b.md", "")
	testutil.WriteFile(t, root, "c.md", "")

	ix := newTestIndex(t, root, true)
	_, err := ix.Build(context.Background())
	require.NoError(t, err)

	docs := ix.EnumerateAll()
	slugs := make([]string, 0, len(docs))
	for _, d := range docs {
		slugs = append(slugs, d.Slug)
		require.False(t, d.LastModified.IsZero())
	}
	require.Equal(t, []string{"", "a", "a/b", "c"}, slugs)
}

func TestBuild_SkipsHiddenAndNonMarkdown(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, ".drafts/secret.md", "")
	testutil.WriteFile(t, root, "a/.hidden.md", "")
	testutil.WriteFile(t, root, "a/image.png", "")
	testutil.WriteFile(t, root, "a/UPPER.MD", "")

	ix := newTestIndex(t, root, true)
	snap, err := ix.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, snap.Len())
	_, ok := snap.TryResolve("a/upper")
	require.True(t, ok)
	_, ok = snap.TryResolve(".drafts/secret")
	require.False(t, ok)
}

func TestBuild_DuplicateSlugFollowsPreference(t *testing.T) {
	root := t.TempDir()
	direct := testutil.WriteFile(t, root, "x.md", "direct")
	index := testutil.WriteFile(t, root, "x/index.md", "index")

	preferIndex := newTestIndex(t, root, true)
	snap, err := preferIndex.Build(context.Background())
	require.NoError(t, err)
	e, ok := snap.TryResolve("x")
	require.True(t, ok)
	require.Equal(t, index, e.Path)
	require.Equal(t, []Conflict{{Slug: "x", Winner: index, Loser: direct}}, snap.Conflicts())
	require.Equal(t, 1, snap.Len())

	preferDirect := newTestIndex(t, root, false)
	snap, err = preferDirect.Build(context.Background())
	require.NoError(t, err)
	e, ok = snap.TryResolve("x")
	require.True(t, ok)
	require.Equal(t, direct, e.Path)
	require.Len(t, snap.Conflicts(), 1)
	require.Equal(t, preferDirect.Mapper().MapToPath("x"), e.Path)
}

func TestBuild_FoldersAndFiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "guide/index.md", "")
	testutil.WriteFile(t, root, "guide/b.md", "")
	testutil.WriteFile(t, root, "guide/a.md", "")
	testutil.WriteFile(t, root, "guide/halo/reach/index.md", "")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guide", "empty"), 0o755))

	ix := newTestIndex(t, root, true)
	snap, err := ix.Build(context.Background())
	require.NoError(t, err)

	guide, ok := snap.Folder("guide")
	require.True(t, ok)
	require.NotNil(t, guide.Index)
	require.Equal(t, []string{"guide/empty", "guide/halo"}, guide.Folders)
	require.Len(t, guide.Files, 2)
	require.Equal(t, "guide/a", guide.Files[0].Slug)

	require.True(t, snap.HasIndex("guide"))
	require.False(t, snap.HasIndex("guide/halo"))
	require.True(t, snap.HasIndex("guide/halo/reach"))

	halo, ok := snap.Folder("guide/halo")
	require.True(t, ok)
	require.Equal(t, []string{"guide/halo/reach"}, halo.Folders)
}

func TestBuild_ParsesNavFile(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "guide/index.md", "")
	testutil.WriteFile(t, root, "guide/toc.yml", "- name: Start\n  href: start.md\n")
	testutil.WriteFile(t, root, "broken/toc.yml", "name: [unterminated\n")

	ix := newTestIndex(t, root, true)
	snap, err := ix.Build(context.Background())
	require.NoError(t, err)

	guide, _ := snap.Folder("guide")
	require.NotEmpty(t, guide.NavFile)
	require.Equal(t, []TocItem{{Name: "Start", Slug: "guide/start", Linked: true, Items: []TocItem{}}}, guide.Toc)

	broken, ok := snap.Folder("broken")
	require.True(t, ok)
	require.NotEmpty(t, broken.NavFile)
	require.Nil(t, broken.Toc)
}

func TestBuild_SwapsAtomically(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"a", "b", "c", "d"} {
		testutil.WriteFile(t, root, n+".md", "")
	}
	ix := newTestIndex(t, root, true)
	_, err := ix.Build(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// A snapshot is either the old or the new tree, never partial.
			n := len(ix.EnumerateAll())
			if n != 4 && n != 5 {
				t.Errorf("observed partial snapshot with %d documents", n)
				return
			}
		}
	}()

	testutil.WriteFile(t, root, "e.md", "")
	for range 20 {
		_, err := ix.Build(context.Background())
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
	require.Len(t, ix.EnumerateAll(), 5)
}

func TestBuild_CanceledContextKeepsPreviousSnapshot(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "a.md", "")
	ix := newTestIndex(t, root, true)
	first, err := ix.Build(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ix.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Same(t, first, ix.Snapshot())
}

func TestLookup_NotFoundIsClassified(t *testing.T) {
	ix := newTestIndex(t, t.TempDir(), true)

	_, err := ix.Lookup("nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not_found")
}
