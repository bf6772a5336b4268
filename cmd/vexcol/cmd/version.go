package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cerp-labs/vexcol/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			fmt.Fprintln(c.OutOrStdout(), version.String())
			return nil
		},
	}
}
