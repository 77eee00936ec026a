// Package main provides the autojs command.
package main

import (
	"os"

	"github.com/example/autojs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
