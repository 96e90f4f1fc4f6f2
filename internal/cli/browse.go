package cli

import (
	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/gui"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the graphical browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return gui.LaunchGUI(cfg)
		},
	}
}
