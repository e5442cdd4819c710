package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-crm-service/internal/auth"
)

func NewRestockCommand(opts *RootOptions) *cobra.Command {
	var threshold, increment int

	cmd := &cobra.Command{
		Use:   "restock",
		Short: "Run one low-stock restock sweep directly against the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = opts.Config.Restock.Threshold
			}
			if !cmd.Flags().Changed("increment") {
				increment = opts.Config.Restock.Increment
			}

			d := newDeps(opts)
			defer d.Close()
			uc, err := d.UseCases(cmd.Context())
			if err != nil {
				return err
			}

			ctx := auth.WithActor(cmd.Context(), "cli")
			res, err := uc.inventory.RunRestockSweep(ctx, threshold, increment)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Message)
			for _, p := range res.Updated {
				fmt.Fprintf(out, "→ %s stock: %d\n", p.Name, p.Stock)
			}
			for _, f := range res.Failures {
				fmt.Fprintf(out, "✗ %s: %s\n", f.ProductID, f.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", 10, "restock products with stock below this value")
	cmd.Flags().IntVar(&increment, "increment", 10, "units added to each low-stock product")
	return cmd
}
