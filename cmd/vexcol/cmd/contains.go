package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cerp-labs/vexcol/internal/cliout"
)

func newContainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contains <id>",
		Short: "Report whether an external id is currently live",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			out := cliout.New(c.OutOrStdout())

			col, err := openCollection()
			if err != nil {
				return err
			}
			if col.Contains(args[0]) {
				out.Successf("%q is present", args[0])
			} else {
				out.Warning("no such id")
			}
			return nil
		},
	}
}
