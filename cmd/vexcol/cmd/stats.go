package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var jsonOut bool

	c := &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := openCollection()
			if err != nil {
				return err
			}
			s := col.Stats()

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "active:      %d\n", s.ActiveCount)
			fmt.Fprintf(w, "tombstoned:  %d\n", s.TombstoneCount)
			fmt.Fprintf(w, "dimensions:  %d\n", s.Dimensions)
			fmt.Fprintf(w, "snapshot:    %d bytes\n", s.SnapshotBytes)
			return nil
		},
	}

	c.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return c
}
