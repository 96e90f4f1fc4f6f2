package gui

import (
	"fmt"

	"github.com/rescale/rescale-browse/internal/config"
)

type launchArgs struct {
	configFile string
	apiKey     string
	tokenFile  string
	apiURL     string
}

// parseArgs understands --config/-c, --api-key, --token-file and --api-url.
// Everything else is ignored.
func parseArgs(args []string) launchArgs {
	var a launchArgs
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			a.configFile = args[i+1]
		case "--api-key":
			a.apiKey = args[i+1]
		case "--token-file":
			a.tokenFile = args[i+1]
		case "--api-url":
			a.apiURL = args[i+1]
		default:
			continue
		}
		i++
	}
	if a.configFile == "" {
		a.configFile = config.GetDefaultConfigPath()
	}
	return a
}

// Run launches the GUI from raw process arguments.
func Run(args []string) error {
	a := parseArgs(args)
	cfg, err := config.LoadConfigCSV(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", a.configFile, err)
	}
	cfg.MergeWithFlagsAndTokenFile(a.apiKey, a.tokenFile, a.apiURL)

	return LaunchGUI(cfg)
}
