package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/nav"
)

// NavCmd implements the 'nav' command.
type NavCmd struct {
	Slug string `arg:"" optional:"" help:"Current document slug; empty lists the top level guides"`
}

func (c *NavCmd) Run(g *Global, root *CLI) error {
	a, err := load(root)
	if err != nil {
		return err
	}
	if err := a.svc.Rebuild(context.Background(), "cli"); err != nil {
		return err
	}
	out := g.out()
	if c.Slug == "" {
		for _, n := range a.svc.Guides() {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", n.Title, n.Slug)
		}
		return nil
	}
	tree := a.svc.Tree(a.svc.NavRoot(c.Slug), c.Slug)
	printNav(out, tree, 0)
	return nil
}

func printNav(w io.Writer, n *nav.Node, depth int) {
	if n == nil {
		return
	}
	marker := ""
	switch {
	case n.IsCurrent:
		marker = " *"
	case n.External():
		marker = " -> " + n.Href
	}
	label := n.Slug
	if n.Header {
		label = "(header)"
	}
	_, _ = fmt.Fprintf(w, "%s%s [%s]%s\n", strings.Repeat("  ", depth), n.Title, displaySlug(label), marker)
	for _, child := range n.Children {
		printNav(w, child, depth+1)
	}
}
