// Package main is the entry point for the examiq CLI.
package main

import (
	"os"

	"github.com/jmylchreest/examiq/cmd/examiq/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
