package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-crm-service/internal/seed"
)

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load customers, products and orders from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(file)
			if err != nil {
				return err
			}

			d := newDeps(opts)
			defer d.Close()
			uc, err := d.UseCases(cmd.Context())
			if err != nil {
				return err
			}

			sum, err := seed.NewSeeder(uc.customers, uc.products, uc.orders, opts.Logger).Apply(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded %d customer(s), %d product(s), %d order(s).\n", sum.Customers, sum.Products, sum.Orders)
			for _, e := range sum.Errors {
				fmt.Fprintf(out, "skipped: %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}
