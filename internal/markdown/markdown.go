// Package markdown renders document bodies to sanitised HTML with goldmark.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is a section heading collected for a page's table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Result is the output of one render.
type Result struct {
	HTML     string
	Headings []Heading
}

// Renderer turns a markdown body (front matter already removed) into HTML.
// folder is the slug of the folder holding the document; relative image paths
// resolve against it.
type Renderer interface {
	Render(body []byte, folder string) (Result, error)
}

// AssetResolver maps an asset reference relative to folder to a URL.
type AssetResolver func(raw, folder string) string

// Options configures a GoldmarkRenderer.
type Options struct {
	// AllowRawHTML passes inline HTML from the source through the sanitiser
	// instead of dropping it.
	AllowRawHTML bool
	// MinHeading and MaxHeading bound the collected headings. Defaults 2 and 3.
	MinHeading int
	MaxHeading int
	// ResolveAsset rewrites relative image destinations. Nil leaves them alone.
	ResolveAsset AssetResolver
}

// GoldmarkRenderer implements Renderer. It is safe for concurrent use.
type GoldmarkRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	opts   Options
}

// NewGoldmarkRenderer builds a renderer with GFM, auto heading IDs and a UGC
// sanitising policy that keeps heading anchors.
func NewGoldmarkRenderer(opts Options) *GoldmarkRenderer {
	if opts.MinHeading <= 0 {
		opts.MinHeading = 2
	}
	if opts.MaxHeading < opts.MinHeading {
		opts.MaxHeading = 3
	}

	rendererOptions := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if opts.AllowRawHTML {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	return &GoldmarkRenderer{
		md:     goldmark.New(rendererOptions...),
		policy: newPolicy(),
		opts:   opts,
	}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup", "div")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowAttrs("class").OnElements("code", "pre", "div", "sup", "a", "li", "hr", "section")
	p.AllowAttrs("role").OnElements("a", "hr")
	p.AllowAttrs("align").OnElements("th", "td")
	return p
}

// Render parses body once, rewrites image destinations, collects headings and
// renders the same tree to sanitised HTML.
func (r *GoldmarkRenderer) Render(body []byte, folder string) (Result, error) {
	ctx := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	headings := make([]Heading, 0)
	err := gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			if node.Level < r.opts.MinHeading || node.Level > r.opts.MaxHeading {
				return gmast.WalkContinue, nil
			}
			h := Heading{Level: node.Level, Text: strings.TrimSpace(inlineText(node, body))}
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					h.ID = string(b)
				}
			}
			headings = append(headings, h)
		case *gmast.Image:
			if r.opts.ResolveAsset != nil && isRelativeAsset(string(node.Destination)) {
				node.Destination = []byte(r.opts.ResolveAsset(string(node.Destination), folder))
			}
		}
		return gmast.WalkContinue, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("walk markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, doc); err != nil {
		return Result{}, fmt.Errorf("render markdown: %w", err)
	}
	return Result{
		HTML:     string(r.policy.SanitizeBytes(buf.Bytes())),
		Headings: headings,
	}, nil
}

// inlineText concatenates the text of n's inline descendants.
func inlineText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return sb.String()
}

func isRelativeAsset(dest string) bool {
	d := strings.ToLower(strings.TrimSpace(dest))
	switch {
	case d == "":
		return false
	case strings.HasPrefix(d, "/"), strings.HasPrefix(d, "#"):
		return false
	case strings.HasPrefix(d, "http://"), strings.HasPrefix(d, "https://"),
		strings.HasPrefix(d, "data:"), strings.HasPrefix(d, "//"):
		return false
	}
	return true
}
