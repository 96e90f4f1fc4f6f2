package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rescale-browse configuration",
		Long: `Configuration management commands for rescale-browse.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Change one setting
  test  - Test API connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup.

The API key is written to a separate token file readable only by you;
the remaining settings go to config.csv. Use --force to overwrite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", path)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}
			return initConfig(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

func prompt(r *bufio.Reader, w io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	input, _ := r.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		return input
	}
	return def
}

func initConfig(r *bufio.Reader, w io.Writer, path string) error {
	fmt.Fprintln(w, "Rescale Browse Setup")
	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w)

	cfg := config.Default()

	var key string
	for key == "" {
		key = prompt(r, w, "API Key (required)", "")
		if key == "" {
			if _, err := r.Peek(1); err == io.EOF {
				return fmt.Errorf("API key is required")
			}
			fmt.Fprintln(w, "  Error: API key is required")
		}
	}

	for _, setting := range []struct{ key, label, def string }{
		{"api_base_url", "API Base URL", cfg.APIBaseURL},
		{"default_layout", "Default layout (table/grid)", cfg.DefaultLayout},
		{"grid_columns", "Tiles per grid row", fmt.Sprint(cfg.GridColumns)},
		{"proxy_mode", "Proxy mode (no-proxy/system/basic/ntlm)", cfg.ProxyMode},
	} {
		if err := cfg.Set(setting.key, prompt(r, w, setting.label, setting.def)); err != nil {
			return err
		}
	}
	if cfg.ProxyMode != "no-proxy" && cfg.ProxyMode != "system" {
		if err := cfg.Set("proxy_host", prompt(r, w, "Proxy host", "")); err != nil {
			return err
		}
		if err := cfg.Set("proxy_port", prompt(r, w, "Proxy port", "8080")); err != nil {
			return err
		}
	}
	if err := cfg.ValidateSettings(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tokenPath := filepath.Join(filepath.Dir(path), "token")
	if err := os.WriteFile(tokenPath, []byte(key), 0600); err != nil {
		return fmt.Errorf("failed to save API token file: %w", err)
	}
	if err := config.SaveConfigCSV(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	GetLogger().Info().Str("path", path).Msg("Configuration saved")

	fmt.Fprintln(w)
	fmt.Fprintf(w, "✓ Configuration saved to: %s\n", path)
	fmt.Fprintf(w, "✓ API token saved to: %s\n", tokenPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Test your configuration with: rescale-browse config test")
	return nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file
  2. Environment variables (RESCALE_API_KEY, RESCALE_API_URL)
  3. Command-line flags (--api-key, --api-url, --token-file)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			showConfig(cmd.OutOrStdout(), cfg, configPath())
			return nil
		},
	}

	return cmd
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, "Current Configuration")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	if cfg.APIKey != "" {
		// Never display any portion of the API key.
		fmt.Fprintf(w, "  %-18s <set (%d chars)>\n", "api_key", len(cfg.APIKey))
	} else {
		fmt.Fprintf(w, "  %-18s <not set>\n", "api_key")
	}
	for _, rec := range cfg.Records() {
		fmt.Fprintf(w, "  %-18s %s\n", rec[0], rec[1])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Configuration file: %s\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(w, "  (file does not exist - using defaults)")
	}
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the configuration file",
		Long: `Change one setting and save the configuration file.

Keys: api_base_url, proxy_mode, proxy_host, proxy_port, proxy_user, no_proxy,
page_size, default_layout, grid_columns, sort_field, sort_ascending, detailed_logging`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(configPath(), args[0], args[1])
		},
	}
}

func setConfigValue(path, key, value string) error {
	cfg, err := config.LoadConfigCSV(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.ValidateSettings(); err != nil {
		return err
	}
	if err := config.SaveConfigCSV(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	GetLogger().Info().Str("key", key).Str("path", path).Msg("Configuration updated")
	return nil
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test API connection",
		Long: `Test the API connection with current configuration.

Use this to verify your API key and network connectivity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			w := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			fmt.Fprintf(w, "API URL: %s\n", cfg.APIBaseURL)
			fmt.Fprintln(w, "Testing connection...")

			apiClient, err := api.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			user, err := apiClient.GetUserProfile(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(w, "✗ Connection FAILED")
				return fmt.Errorf("connection test failed: %w", err)
			}

			logger.Info().Msg("Connection test successful")
			fmt.Fprintln(w, "✓ Connection SUCCESSFUL")
			fmt.Fprintf(w, "  Email: %s\n", user.Email)
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			path := configPath()
			fmt.Fprintln(w, path)
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintln(w, "Status: File does not exist")
				fmt.Fprintln(w, "Create a configuration file with: rescale-browse config init")
			}
			return nil
		},
	}

	return cmd
}
