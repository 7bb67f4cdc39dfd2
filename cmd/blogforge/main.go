package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogforge/cmd/blogforge/commands"
)

var version = "dev"

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("blogforge"),
		kong.Description("Static blog generator: Markdown in, finished site out"),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}))
}
