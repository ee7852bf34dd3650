package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docserve/cmd/docserve/commands"
	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docserve"),
		kong.Description("Serve a tree of Markdown guides as a documentation site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(&commands.Global{})
	ferrors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
}
