package cli

import (
	"fmt"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/config"
)

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetDefaultConfigPath()
}

// loadConfig reads the config file and applies flags and environment.
// Priority: flags > environment > config file > defaults
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigCSV(configPath())
	if err != nil {
		return nil, err
	}
	cfg.MergeWithFlagsAndTokenFile(apiKey, tokenFile, apiBaseURL)
	return cfg, nil
}

// getAPIClient loads and validates configuration and creates an API client.
func getAPIClient() (*config.Config, *api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return cfg, client, nil
}
