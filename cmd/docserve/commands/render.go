package commands

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/site"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Slug string `arg:"" optional:"" help:"Document slug; empty renders the home page"`
	Host string `help:"Request host, for subdomain folders"`
}

func (c *RenderCmd) Run(g *Global, root *CLI) error {
	a, err := load(root)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := a.svc.Rebuild(ctx, "cli"); err != nil {
		return err
	}
	page, found, err := a.svc.Page(ctx, site.Request{Slug: c.Slug, Host: c.Host})
	if err != nil {
		return err
	}
	if !found {
		return ferrors.NotFoundError("document not found").WithContext("slug", c.Slug).Build()
	}
	_, err = fmt.Fprintln(g.out(), page.Doc.HTML)
	return err
}
