package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cerp-labs/vexcol/internal/cliout"
)

func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <id> <comma-separated-vector>",
		Short: "Upsert a vector under an external id",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			out := cliout.New(c.OutOrStdout())

			vec, err := parseVector(args[1])
			if err != nil {
				return err
			}
			col, err := openCollection()
			if err != nil {
				return err
			}
			if err := col.Insert(args[0], vec); err != nil {
				return err
			}
			if err := col.Checkpoint(); err != nil {
				return err
			}
			out.Successf("inserted %q", args[0])
			return nil
		},
	}
}
