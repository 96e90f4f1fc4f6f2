package cli

import (
	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/sources"
)

// newJobsCmd creates the 'jobs' command group.
func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse your Rescale jobs",
	}
	cmd.AddCommand(newJobsListCmd())
	return cmd
}

func newJobsListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List jobs",
		Long: `List jobs associated with your account.

Examples:
  # First 100 jobs
  rescale-browse jobs ls

  # Jobs 100-199 sorted by status
  rescale-browse jobs ls --offset 100 --sort status

  # Every job, with a progress bar
  rescale-browse jobs ls --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := getAPIClient()
			if err != nil {
				return err
			}

			src := sources.NewJobSource(client)
			src.SetSearch(opts.search)

			return runList(GetContext(), cmd, cfg, listing{
				kind:       "jobs",
				fetch:      src.FetchPage,
				strategies: sources.JobStrategies,
				columns:    sources.JobColumns(),
			}, opts, cmd.OutOrStdout())
		},
	}

	opts.register(cmd)
	return cmd
}
