package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cerp-labs/vexcol/internal/cliout"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Tombstone a vector by external id",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			out := cliout.New(c.OutOrStdout())

			col, err := openCollection()
			if err != nil {
				return err
			}
			found := col.Delete(args[0])
			if err := col.Checkpoint(); err != nil {
				return err
			}
			if found {
				out.Successf("deleted %q", args[0])
			} else {
				out.Warning("no such id, or already deleted")
			}
			return nil
		},
	}
}
