package main

import (
	"github.com/spf13/cobra"
)

func newReceiptsCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "История оформленных заказов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := c.dependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			receipts, err := deps.Receipts.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderReceipts(c.out, receipts)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of receipts to show, 0 for all")
	return cmd
}
