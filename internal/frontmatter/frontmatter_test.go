package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := "# Title\n\nHello\n"

	fm, body := Parse(input)
	require.Equal(t, 0, fm.Len())
	require.Equal(t, input, body)
}

func TestParse_ScalarsAndBody(t *testing.T) {
	input := "---\ntitle: Halo MCC\norder: 1\n---\n\n\n# Hi\n"

	fm, body := Parse(input)
	require.Equal(t, []string{"title", "order"}, fm.Keys())

	title, ok := fm.String("title")
	require.True(t, ok)
	require.Equal(t, "Halo MCC", title)
	require.Equal(t, 1, fm.Int("order", 0))
	require.Equal(t, "# Hi\n", body)
}

func TestParse_CRLF(t *testing.T) {
	input := "---\r\ntitle: 'Quoted'\r\n---\r\nBody\r\n"

	fm, body := Parse(input)
	title, ok := fm.String("TITLE")
	require.True(t, ok)
	require.Equal(t, "Quoted", title)
	require.Equal(t, "Body\r\n", body)
}

func TestParse_MissingClosingDelimiter_FallsBackToNoMetadata(t *testing.T) {
	input := "---\ntitle: value\n# Title\n"

	fm, body := Parse(input)
	require.Equal(t, 0, fm.Len())
	require.Equal(t, input, body)
}

func TestParse_OpenerWithoutLineBreak_IsNotFrontmatter(t *testing.T) {
	input := "--- title: x\n---\n"

	fm, body := Parse(input)
	require.Equal(t, 0, fm.Len())
	require.Equal(t, input, body)
}

func TestParse_EmptyBlock(t *testing.T) {
	fm, body := Parse("---\n---\n# Title\n")
	require.Equal(t, 0, fm.Len())
	require.Equal(t, "# Title\n", body)
}

func TestParse_CommentsAndBlankLinesIgnored(t *testing.T) {
	input := "---\n# a comment\n\n   # indented comment\ndescription: \"A guide\"\n---\nbody"

	fm, body := Parse(input)
	require.Equal(t, 1, fm.Len())
	desc, ok := fm.String("description")
	require.True(t, ok)
	require.Equal(t, "A guide", desc)
	require.Equal(t, "body", body)
}

func TestParse_ListAccumulation(t *testing.T) {
	fm, _ := Parse("---\ntags:\n- a\n- b\n---\n")

	require.Equal(t, []string{"a", "b"}, fm.List("tags"))
	v, ok := fm.Get("tags")
	require.True(t, ok)
	require.True(t, v.IsList)

	_, isScalar := fm.String("tags")
	require.False(t, isScalar)
}

func TestParse_ListEndsAtNextKey(t *testing.T) {
	input := "---\nplatforms:\n  - \"PC\"\n  # skipped\n  - 'Xbox'\ngame: Halo\n---\n"

	fm, _ := Parse(input)
	require.Equal(t, []string{"PC", "Xbox"}, fm.List("platforms"))
	game, ok := fm.String("game")
	require.True(t, ok)
	require.Equal(t, "Halo", game)
}

func TestParse_EmptyListIsAbsent(t *testing.T) {
	fm, _ := Parse("---\ntags:\ntitle: x\n---\n")

	_, ok := fm.Get("tags")
	require.False(t, ok)
	require.Empty(t, fm.List("tags"))
	require.NotNil(t, fm.List("tags"))
}

func TestParse_ValueContainingColon(t *testing.T) {
	fm, _ := Parse("---\ncanonical: https://example.com/a\n---\n")

	v, ok := fm.String("canonical")
	require.True(t, ok)
	require.Equal(t, "https://example.com/a", v)
}

func TestParse_IsIdempotentOnBody(t *testing.T) {
	_, body := Parse("---\ntitle: x\n---\n# Heading\n\ntext\n")

	fm, again := Parse(body)
	require.Equal(t, 0, fm.Len())
	require.Equal(t, body, again)
}

func TestBool(t *testing.T) {
	fm, _ := Parse("---\na: YES\nb: n\nc: 1\nd: False\ne: maybe\n---\n")

	require.True(t, fm.Bool("a", false))
	require.False(t, fm.Bool("b", true))
	require.True(t, fm.Bool("c", false))
	require.False(t, fm.Bool("d", true))
	require.True(t, fm.Bool("e", true))
	require.False(t, fm.Bool("missing", false))
}

func TestDate(t *testing.T) {
	fm, _ := Parse("---\nday: 2024-03-05\nstamp: 2024-03-05T10:20:30+02:00\nbad: next tuesday\n---\n")

	day, ok := fm.Date("day")
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), day)

	stamp, ok := fm.Date("stamp")
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 3, 5, 8, 20, 30, 0, time.UTC), stamp)
	require.Equal(t, time.UTC, stamp.Location())

	_, ok = fm.Date("bad")
	require.False(t, ok)
}

func TestLaterKeyOverwritesEarlier(t *testing.T) {
	fm, _ := Parse("---\nTitle: one\ntitle: two\n---\n")

	require.Equal(t, 1, fm.Len())
	require.Equal(t, "two", fm.StringOr("", "title"))
	require.Equal(t, []string{"Title"}, fm.Keys())
}

func TestMap(t *testing.T) {
	fm, _ := Parse("---\ntitle: x\ntags:\n- a\n---\n")

	require.Equal(t, map[string]any{"title": "x", "tags": []string{"a"}}, fm.Map())
}
