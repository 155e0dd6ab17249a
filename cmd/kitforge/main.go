// Package main is the entry point for the kitforge CLI.
package main

import (
	"os"

	"github.com/good-yellow-bee/kitforge/cmd/kitforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
