package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var k int
	var jsonOut bool

	c := &cobra.Command{
		Use:   "search <comma-separated-vector>",
		Short: "Find the k nearest neighbours of a query vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vec, err := parseVector(args[0])
			if err != nil {
				return err
			}
			col, err := openCollection()
			if err != nil {
				return err
			}
			matches, err := col.Search(vec, k)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}

			for i, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (similarity %.4f)\n", i+1, m.ID, m.Similarity)
			}
			return nil
		},
	}

	c.Flags().IntVar(&k, "k", 10, "number of neighbours to return")
	c.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return c
}
