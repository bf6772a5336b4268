package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cerp-labs/vexcol/internal/cliout"
)

func newCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoint",
		Short: "Compact tombstoned entries and persist the collection to disk",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			out := cliout.New(c.OutOrStdout())

			col, err := openCollection()
			if err != nil {
				return err
			}
			if err := col.Checkpoint(); err != nil {
				return err
			}
			out.Success("checkpoint complete")
			return nil
		},
	}
}
