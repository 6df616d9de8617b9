package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "readreducer",
		Usage: "Compress a coordinate-sorted BAM into consensus and variable-region reads",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Reduce one input file",
				Flags:  runFlags(),
				Action: run,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
