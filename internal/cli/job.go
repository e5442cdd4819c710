package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-crm-service/internal/jobs"
)

var jobNames = []string{jobs.NameHeartbeat, jobs.NameLowStock, jobs.NameOrderReminders, jobs.NameCRMReport}

func NewJobCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "job <name>",
		Short:     "Run one scheduled job now (" + strings.Join(jobNames, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: jobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps(opts)
			defer d.Close()

			job, ok := d.Jobs().Get(args[0])
			if !ok {
				return fmt.Errorf("unknown job %q, expected one of %s", args[0], strings.Join(jobNames, ", "))
			}
			job.Run(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%s finished.\n", job.Name())
			return nil
		},
	}
}
