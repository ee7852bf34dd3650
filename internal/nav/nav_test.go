package nav

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/content"
	"git.home.luguber.info/inful/docserve/internal/markdown"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/slug"
	"git.home.luguber.info/inful/docserve/internal/testutil"
)

func fm(title string, extra string) string {
	return "---\ntitle: " + title + "\n" + extra + "---\n"
}

func newBuilder(t *testing.T, root string, opts ...Option) *Builder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := content.NewIndex(slug.NewMapper(slug.Options{Root: root, PreferIndexFiles: true}), content.WithLogger(logger))
	_, err := ix.Build(context.Background())
	require.NoError(t, err)
	cache := render.NewCache(ix, markdown.NewGoldmarkRenderer(markdown.Options{}), render.WithLogger(logger))
	return NewBuilder(ix, cache, append([]Option{WithLogger(logger)}, opts...)...)
}

func titles(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Title)
	}
	return out
}

func TestBuildTree_SortsByOrderThenTitle(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", fm("Home", ""))
	testutil.WriteFile(t, root, "b.md", fm("B", "order: 2\n"))
	testutil.WriteFile(t, root, "z.md", fm("Z", "order: 1\n"))
	testutil.WriteFile(t, root, "a.md", fm("A", "order: 1\n"))

	tree := newBuilder(t, root).BuildTree("", "")
	require.NotNil(t, tree)
	require.Equal(t, []string{"A", "Z", "B"}, titles(tree.Children))
}

func TestBuildTree_TitleTieBreakIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "x.md", fm("beta", ""))
	testutil.WriteFile(t, root, "y.md", fm("Alpha", ""))
	testutil.WriteFile(t, root, "w.md", fm("Gamma", ""))

	tree := newBuilder(t, root).BuildTree("", "")
	require.Equal(t, []string{"Alpha", "beta", "Gamma"}, titles(tree.Children))
}

func TestBuildTree_BubblesIndexlessFoldersRecursively(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "guide/index.md", fm("Guide", ""))
	testutil.WriteFile(t, root, "guide/a/b/c.md", fm("Deep", ""))
	testutil.WriteFile(t, root, "guide/a/top.md", fm("Top", ""))
	testutil.WriteFile(t, root, "guide/halo/index.md", fm("Halo", ""))
	testutil.WriteFile(t, root, "guide/halo/setup.md", fm("Setup", ""))

	tree := newBuilder(t, root).BuildTree("guide", "")
	require.Equal(t, "Guide", tree.Title)
	require.Equal(t, []string{"Deep", "Halo", "Top"}, titles(tree.Children))

	halo := tree.Children[1]
	require.True(t, halo.IsIndex)
	require.Equal(t, "guide/halo", halo.Slug)
	require.Equal(t, []string{"Setup"}, titles(halo.Children))
}

func TestBuildTree_HiddenIndexBubblesChildren(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "hidden/index.md", fm("Hidden", "nav_hide: true\n"))
	testutil.WriteFile(t, root, "hidden/child.md", fm("Child", ""))
	testutil.WriteFile(t, root, "leaf.md", fm("Leaf", "nav_hide: yes\n"))

	tree := newBuilder(t, root).BuildTree("", "")
	require.Equal(t, []string{"Child"}, titles(tree.Children))
}

func TestBuildTree_ExcludesDefaultDocumentAndReadme(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "docs/index.md", fm("Docs", ""))
	testutil.WriteFile(t, root, "docs/README.md", fm("Readme", ""))
	testutil.WriteFile(t, root, "docs/page.md", fm("Page", ""))

	tree := newBuilder(t, root).BuildTree("docs", "")
	require.Equal(t, []string{"Page"}, titles(tree.Children))
}

func TestBuildTree_SynthesizesRootWithoutIndex(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "speed-run/page.md", fm("Page", ""))

	tree := newBuilder(t, root).BuildTree("speed-run", "")
	require.NotNil(t, tree)
	require.Equal(t, "Speed Run", tree.Title)
	require.Equal(t, "speed-run", tree.Slug)
	require.True(t, tree.IsIndex)
}

func TestBuildTree_MissingRootIsNil(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")

	require.Nil(t, newBuilder(t, root).BuildTree("nope", ""))
	require.Nil(t, newBuilder(t, filepath.Join(root, "absent")).BuildTree("", ""))
}

func TestBuildTree_MarksCurrentAndAncestors(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", fm("Home", ""))
	testutil.WriteFile(t, root, "guide/index.md", fm("Guide", ""))
	testutil.WriteFile(t, root, "guide/halo/index.md", fm("Halo", ""))
	testutil.WriteFile(t, root, "guide/halo/setup.md", fm("Setup", ""))
	testutil.WriteFile(t, root, "other.md", fm("Other", ""))

	tree := newBuilder(t, root).BuildTree("", "Guide/Halo/Setup")

	require.True(t, tree.IsAncestorOfCurrent)
	require.False(t, tree.IsCurrent)

	guide := tree.Children[0]
	require.Equal(t, "Guide", guide.Title)
	require.True(t, guide.IsAncestorOfCurrent)

	halo := guide.Children[0]
	require.True(t, halo.IsAncestorOfCurrent)
	setup := halo.Children[0]
	require.True(t, setup.IsCurrent)
	require.True(t, setup.IsAncestorOfCurrent)

	other := tree.Children[1]
	require.False(t, other.IsCurrent)
	require.False(t, other.IsAncestorOfCurrent)
}

func TestBuildTree_NavTitleOverridesTitle(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "a.md", "---\ntitle: A very long page title\nnav_title: Short\n---\n")

	tree := newBuilder(t, root).BuildTree("", "")
	require.Equal(t, []string{"Short"}, titles(tree.Children))
}

func TestNavRootSlug(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "guide/halo/index.md", "")
	testutil.WriteFile(t, root, "guide/halo/reach/setup.md", "")
	testutil.WriteFile(t, root, "guide/other.md", "")

	b := newBuilder(t, root)
	require.Equal(t, "guide/halo", b.NavRootSlug("guide/halo/reach/setup"))
	require.Equal(t, "guide/halo", b.NavRootSlug("guide/halo"))
	require.Equal(t, "", b.NavRootSlug("guide/other"))
	require.Equal(t, "", b.NavRootSlug(""))
}

func TestTopLevel(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "halo/index.md", fm("Halo", "order: 2\n"))
	testutil.WriteFile(t, root, "halo/setup.md", fm("Setup", ""))
	testutil.WriteFile(t, root, "portal/index.md", fm("Portal", "order: 1\n"))
	testutil.WriteFile(t, root, "secret/index.md", fm("Secret", "nav_hide: true\n"))
	testutil.WriteFile(t, root, "about.md", fm("About", "order: 3\n"))

	top := newBuilder(t, root).TopLevel()
	require.Equal(t, []string{"Portal", "Halo", "About"}, titles(top))
	require.Empty(t, top[1].Children)
}
