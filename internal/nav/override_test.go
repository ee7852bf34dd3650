package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/testutil"
)

const haloToc = `
- name: Start here
  href: setup.md
- name: Categories
  items:
    - name: Legendary
      href: legendary/index.md
    - name: Leaderboards
      href: https://speedrun.com/mcc
- name: Back to guides
  href: ../index.md
`

func TestBuildTree_OverrideKeepsDeclaredOrder(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "guide/index.md", fm("Guide", ""))
	testutil.WriteFile(t, root, "guide/halo/index.md", fm("Halo", ""))
	testutil.WriteFile(t, root, "guide/halo/setup.md", fm("Setup", ""))
	testutil.WriteFile(t, root, "guide/halo/legendary/index.md", fm("Legendary", ""))
	testutil.WriteFile(t, root, "guide/halo/toc.yml", haloToc)

	tree := newBuilder(t, root).BuildTree("guide/halo", "guide/halo/legendary")
	require.Equal(t, "Halo", tree.Title)
	require.Equal(t, []string{"Start here", "Categories", "Back to guides"}, titles(tree.Children))

	start := tree.Children[0]
	require.Equal(t, "guide/halo/setup", start.Slug)

	cats := tree.Children[1]
	require.True(t, cats.Header)
	require.True(t, cats.IsAncestorOfCurrent)
	require.Equal(t, "guide/halo/legendary", cats.Children[0].Slug)
	require.True(t, cats.Children[0].IsCurrent)
	require.True(t, cats.Children[1].External())
	require.Equal(t, "https://speedrun.com/mcc", cats.Children[1].Href)

	require.Equal(t, "guide", tree.Children[2].Slug)
}

func TestBuildTree_OverrideFromNearestAncestor(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "guide/index.md", fm("Guide", ""))
	testutil.WriteFile(t, root, "guide/toc.yml", "- name: Only entry\n  href: a.md\n")
	testutil.WriteFile(t, root, "guide/a.md", fm("A", ""))
	testutil.WriteFile(t, root, "guide/sub/b.md", fm("B", ""))

	tree := newBuilder(t, root).BuildTree("guide/sub", "")
	require.NotNil(t, tree)
	require.Equal(t, []string{"Only entry"}, titles(tree.Children))
}

func TestBuildTree_SubfolderOverrideReplacesItsSubtree(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "halo/index.md", fm("Halo", ""))
	testutil.WriteFile(t, root, "halo/z.md", fm("Zeta", ""))
	testutil.WriteFile(t, root, "halo/toc.yml", "- name: Declared\n  href: z.md\n")
	testutil.WriteFile(t, root, "other.md", fm("Other", ""))

	tree := newBuilder(t, root).BuildTree("", "")
	require.Equal(t, []string{"Halo", "Other"}, titles(tree.Children))
	require.Equal(t, []string{"Declared"}, titles(tree.Children[0].Children))
}

func TestBuildTree_OverridesDisabled(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "toc.yml", "- name: Declared\n  href: a.md\n")
	testutil.WriteFile(t, root, "a.md", fm("A", ""))

	tree := newBuilder(t, root, WithOverrides(false)).BuildTree("", "")
	require.Equal(t, []string{"A"}, titles(tree.Children))
}

func TestBuildTree_BrokenOverrideFallsBackToDerived(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "index.md", "")
	testutil.WriteFile(t, root, "toc.yml", "name: [oops\n")
	testutil.WriteFile(t, root, "a.md", fm("A", ""))

	tree := newBuilder(t, root).BuildTree("", "")
	require.Equal(t, []string{"A"}, titles(tree.Children))
}
