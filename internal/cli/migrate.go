package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-crm-service/pkg/database"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps(opts)
			defer d.Close()

			db, err := d.DB(cmd.Context())
			if err != nil {
				return err
			}
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}
