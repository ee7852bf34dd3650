package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveHref(t *testing.T) {
	cases := []struct {
		folder, href, slug, url string
	}{
		{"guide/halo", "setup.md", "guide/halo/setup", ""},
		{"guide/halo", "reach/index.md", "guide/halo/reach", ""},
		{"guide/halo", "../other.md", "guide/other", ""},
		{"guide/halo", "/guide/index.md", "guide", ""},
		{"guide/halo", "/index.md", "", ""},
		{"", "index.md", "", ""},
		{"guide", `sub\page.md`, "guide/sub/page", ""},
		{"guide", "https://example.com/x.md", "", "https://example.com/x.md"},
		{"guide", "HTTP://example.com", "", "HTTP://example.com"},
	}
	for _, tc := range cases {
		s, u := ResolveHref(tc.folder, tc.href)
		require.Equal(t, tc.slug, s, "%s + %s", tc.folder, tc.href)
		require.Equal(t, tc.url, u, "%s + %s", tc.folder, tc.href)
	}
}

func TestParseToc_NestedItems(t *testing.T) {
	data := []byte(`
- name: Overview
  href: index.md
- name: Categories
  items:
    - name: Any%
      href: any-percent.md
    - href: https://speedrun.com
- href: notes.md
`)
	items, err := ParseToc(data, "guide/halo")
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "Overview", items[0].Name)
	require.Equal(t, "guide/halo", items[0].Slug)
	require.True(t, items[0].Linked)

	require.False(t, items[1].Linked)
	require.Len(t, items[1].Items, 2)
	require.Equal(t, "guide/halo/any-percent", items[1].Items[0].Slug)
	require.Equal(t, "Untitled", items[1].Items[1].Name)
	require.Equal(t, "https://speedrun.com", items[1].Items[1].URL)

	require.Equal(t, "Untitled", items[2].Name)
}

func TestParseToc_RejectsMapping(t *testing.T) {
	_, err := ParseToc([]byte("name: x\n"), "guide")
	require.Error(t, err)
}

func TestParseToc_EmptyFile(t *testing.T) {
	items, err := ParseToc(nil, "guide")
	require.NoError(t, err)
	require.Empty(t, items)
}
