package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"stockcurve/internal/cli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
