package commands

import (
	"context"
	"os"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/sitemap"
)

// SitemapCmd implements the 'sitemap' command.
type SitemapCmd struct {
	BaseURL string `name:"base-url" help:"Absolute site URL, overrides sitemap.base_url"`
	Output  string `short:"o" help:"Write to this file instead of stdout" type:"path"`
}

func (c *SitemapCmd) Run(g *Global, root *CLI) error {
	a, err := load(root)
	if err != nil {
		return err
	}
	base := c.BaseURL
	if base == "" {
		base = a.cfg.Sitemap.BaseURL
	}
	if base == "" {
		return ferrors.ValidationError("a base URL is required: pass --base-url or set sitemap.base_url").Build()
	}
	if err := a.svc.Rebuild(context.Background(), "cli"); err != nil {
		return err
	}
	urls := a.svc.Sitemap(base, a.cfg.Sitemap.PathPrefix, a.cfg.Sitemap.MaxURLs)

	if c.Output == "" {
		return sitemap.WriteXML(g.out(), urls)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create sitemap file").
			WithContext("path", c.Output).
			Build()
	}
	if err := sitemap.WriteXML(f, urls); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
