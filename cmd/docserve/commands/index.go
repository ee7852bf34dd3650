package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Conflicts bool `help:"Only list slug conflicts"`
}

func (c *IndexCmd) Run(g *Global, root *CLI) error {
	a, err := load(root)
	if err != nil {
		return err
	}
	if err := a.svc.Rebuild(context.Background(), "cli"); err != nil {
		return err
	}
	snap := a.svc.Index().Snapshot()
	out := g.out()

	if !c.Conflicts {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "SLUG\tPATH\tMODIFIED")
		for _, e := range snap.Entries() {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", displaySlug(e.Slug), e.Path, e.ModTime.UTC().Format(time.RFC3339))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%d documents\n", snap.Len())
	}

	for _, cf := range snap.Conflicts() {
		_, _ = fmt.Fprintf(out, "conflict %s: %s wins over %s\n", displaySlug(cf.Slug), cf.Winner, cf.Loser)
	}
	return nil
}

func displaySlug(s string) string {
	if s == "" {
		return "/"
	}
	return s
}
