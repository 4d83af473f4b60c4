// Package main provides the entry point for the hybridctl CLI.
package main

import (
	"os"

	"github.com/lumensearch/hybrid/cmd/hybridctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
