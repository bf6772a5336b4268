// Package main provides the entry point for the vexcol CLI.
package main

import (
	"os"

	"github.com/cerp-labs/vexcol/cmd/vexcol/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
