package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/moshez/ward/internal/cmd/cmdutil"
	"github.com/moshez/ward/internal/cmd/parsehtml"
	"github.com/moshez/ward/internal/cmd/run"
	"github.com/moshez/ward/internal/cmd/schema"
)

// Version is set at build time.
var Version = "dev"

var commands = []*cli.Command{
	run.Command(),
	parsehtml.Command(),
	schema.Command(),
	schema.CheckCommand(),
	schema.ConfigCommand(),
}

func main() {
	app := &cli.App{
		Name:                 "wardhost",
		Usage:                "run ward guests against a headless page",
		UsageText:            "wardhost [global options] command [command options] [arguments...]",
		Version:              Version,
		EnableBashCompletion: true,
		Flags:                cmdutil.Flags,
		Commands:             commands,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
