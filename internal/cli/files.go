package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/sources"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Browse files and folders in your Rescale library",
	}
	cmd.AddCommand(newFilesListCmd())
	return cmd
}

func newFilesListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:     "ls [folder-id]",
		Aliases: []string{"list"},
		Short:   "List a folder",
		Long: `List the contents of a folder. Without a folder ID the root of My Library is listed.

Examples:
  # First 100 entries, newest first
  rescale-browse files ls --sort created --desc

  # Entries 200-249 of a folder as a 6-wide grid
  rescale-browse files ls abcDEF --offset 200 --limit 50 --layout grid --columns 6

  # Everything, with a progress bar
  rescale-browse files ls --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			ctx := GetContext()

			cfg, client, err := getAPIClient()
			if err != nil {
				return err
			}

			folderID := ""
			if len(args) == 1 {
				folderID = args[0]
			} else {
				roots, err := client.GetRootFolders(ctx)
				if err != nil {
					return fmt.Errorf("failed to get root folders: %w", err)
				}
				folderID = roots.MyLibrary
			}
			logger.Debug().Str("folder", folderID).Msg("Listing folder")

			src := sources.NewFolderSource(client, folderID)
			src.SetSearch(opts.search)

			return runList(ctx, cmd, cfg, listing{
				kind:       "files",
				fetch:      src.FetchPage,
				strategies: sources.FileStrategies,
				columns:    sources.FileColumns(),
			}, opts, cmd.OutOrStdout())
		},
	}

	opts.register(cmd)
	return cmd
}
