// Package cmd provides the CLI commands for vexcol, a thin demonstration
// harness around the pkg/vexcol library — not the core deliverable.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cerp-labs/vexcol/pkg/version"
)

var (
	flagPath   string
	flagDims   int
	flagConfig string
)

// NewRootCmd creates the root command for the vexcol CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "vexcol",
		Short:   "Open, query, and inspect an on-disk vexcol collection",
		Long:    `vexcol is a command-line harness over an embedded cosine-similarity vector collection.`,
		Version: version.Version,
	}
	root.SetVersionTemplate("vexcol version {{.Version}}\n")

	root.PersistentFlags().StringVar(&flagPath, "path", "", "collection directory")
	root.PersistentFlags().IntVar(&flagDims, "dims", 0, "vector dimensions")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a vexcol.yaml config file (or its containing directory)")

	root.AddCommand(newInsertCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newContainsCmd())
	root.AddCommand(newCheckpointCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
