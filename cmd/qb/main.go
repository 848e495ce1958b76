// Package main is the entry point for the qb CLI tool.
package main

import (
	"os"

	"github.com/roach88/qbuilder/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
