package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/1008surajshaw/meds-buddy/internal/cli"
)

var version = "dev"

func main() {
	var app cli.App
	ctx := kong.Parse(&app, cli.Options(version)...)

	if err := ctx.Run(&cli.Context{Out: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
