package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rescale/rescale-browse/internal/constants"
)

// Layout names accepted by default_layout.
const (
	LayoutTable = "table"
	LayoutGrid  = "grid"
)

// Config represents the browser configuration
type Config struct {
	// Proxy settings
	ProxyMode     string // "no-proxy", "ntlm", "basic", "system"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // never persisted
	NoProxy       string // Comma-separated list of hosts to bypass proxy

	// API settings
	APIKey     string // never persisted
	APIBaseURL string

	// List settings
	PageSize      int    // items per API page
	DefaultLayout string // "table" or "grid"
	GridColumns   int    // tiles per row in grid layout
	SortField     string // "name", "size", "created", "modified", "status"
	SortAscending bool

	DetailedLogging bool
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ProxyMode:     "no-proxy",
		APIBaseURL:    "https://platform.rescale.com",
		PageSize:      constants.DefaultPageSize,
		DefaultLayout: LayoutTable,
		GridColumns:   constants.DefaultGridColumns,
		SortField:     "name",
		SortAscending: true,
	}
}

// LoadConfigCSV loads configuration from a CSV file
// CSV format: key,value pairs
func LoadConfigCSV(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read config CSV: %w", err)
	}

	for i, record := range records {
		if i == 0 && len(record) >= 2 && strings.ToLower(record[0]) == "key" {
			continue
		}
		if len(record) < 2 {
			continue
		}

		key := strings.TrimSpace(strings.ToLower(record[0]))
		value := strings.TrimSpace(record[1])

		switch key {
		case "proxy_password", "api_key":
			// Secrets are never read from the config file.
			if value != "" {
				log.Warn().Str("key", key).Msg("ignoring secret in config file; use RESCALE_API_KEY, --token-file or the runtime prompt")
			}
			continue
		}

		if err := cfg.Set(key, value); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("skipping config entry")
		}
	}

	return cfg, nil
}

// Set assigns one key. Unknown keys and unparsable values are errors.
func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	switch key {
	case "proxy_mode":
		c.ProxyMode = value
	case "proxy_host":
		c.ProxyHost = value
	case "proxy_port":
		return setInt(&c.ProxyPort, key, value)
	case "proxy_user":
		c.ProxyUser = value
	case "no_proxy":
		c.NoProxy = value
	case "api_base_url", "tenant_url":
		c.APIBaseURL = value
	case "page_size":
		return setInt(&c.PageSize, key, value)
	case "default_layout":
		c.DefaultLayout = strings.ToLower(value)
	case "grid_columns":
		return setInt(&c.GridColumns, key, value)
	case "sort_field":
		c.SortField = value
	case "sort_ascending":
		c.SortAscending = parseBool(value)
	case "detailed_logging":
		c.DetailedLogging = parseBool(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %q is not a number", key, value)
	}
	*dst = v
	return nil
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

// Records returns the persisted key/value pairs in file order.
func (c *Config) Records() [][]string {
	return [][]string{
		{"proxy_mode", c.ProxyMode},
		{"proxy_host", c.ProxyHost},
		{"proxy_port", strconv.Itoa(c.ProxyPort)},
		{"proxy_user", c.ProxyUser},
		{"no_proxy", c.NoProxy},
		{"api_base_url", c.APIBaseURL},
		{"page_size", strconv.Itoa(c.PageSize)},
		{"default_layout", c.DefaultLayout},
		{"grid_columns", strconv.Itoa(c.GridColumns)},
		{"sort_field", c.SortField},
		{"sort_ascending", strconv.FormatBool(c.SortAscending)},
		{"detailed_logging", strconv.FormatBool(c.DetailedLogging)},
	}
}

// SaveConfigCSV writes configuration to a CSV file.
// API keys and proxy passwords are never written.
func SaveConfigCSV(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"key", "value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range cfg.Records() {
		if record[1] == "" || record[1] == "0" {
			continue
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// MergeWithFlagsAndTokenFile applies command-line flags and environment variables.
// API key precedence (highest to lowest): --api-key > RESCALE_API_KEY > --token-file > default token file.
func (c *Config) MergeWithFlagsAndTokenFile(apiKey, tokenFilePath, apiBaseURL string) {
	var sources []string

	var defaultTokenKey string
	if p := GetDefaultTokenPath(); p != "" {
		if key, err := ReadTokenFile(p); err == nil {
			defaultTokenKey = key
			sources = append(sources, "default token file")
		}
	}

	var explicitTokenKey string
	if tokenFilePath != "" {
		if key, err := ReadTokenFile(tokenFilePath); err == nil {
			explicitTokenKey = key
			sources = append(sources, "--token-file")
		} else {
			log.Warn().Err(err).Str("path", tokenFilePath).Msg("could not read token file")
		}
	}

	envKey := os.Getenv("RESCALE_API_KEY")
	if envKey != "" {
		sources = append(sources, "RESCALE_API_KEY")
	}
	if apiKey != "" {
		sources = append(sources, "--api-key")
	}

	if len(sources) > 1 {
		log.Debug().Strs("sources", sources).Str("using", sources[len(sources)-1]).Msg("multiple API key sources")
	}

	for _, key := range []string{defaultTokenKey, explicitTokenKey, envKey, apiKey} {
		if key != "" {
			c.APIKey = key
		}
	}

	if envURL := os.Getenv("RESCALE_API_URL"); envURL != "" {
		c.APIBaseURL = envURL
	}
	if apiBaseURL != "" {
		c.APIBaseURL = apiBaseURL
	}
	if c.APIBaseURL != "" && !strings.HasPrefix(c.APIBaseURL, "http") {
		c.APIBaseURL = "https://" + c.APIBaseURL
	}
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required (set via RESCALE_API_KEY env var or --token-file flag)")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	return c.ValidateSettings()
}

// ValidateSettings checks everything Validate does except credentials.
func (c *Config) ValidateSettings() error {
	if c.PageSize < 1 || c.PageSize > constants.APIMaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d", constants.APIMaxPageSize)
	}
	if c.DefaultLayout != LayoutTable && c.DefaultLayout != LayoutGrid {
		return fmt.Errorf("default_layout must be %q or %q", LayoutTable, LayoutGrid)
	}
	if c.GridColumns < constants.MinGridColumns || c.GridColumns > constants.MaxGridColumns {
		return fmt.Errorf("grid_columns must be between %d and %d", constants.MinGridColumns, constants.MaxGridColumns)
	}
	switch strings.ToLower(c.ProxyMode) {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return fmt.Errorf("unsupported proxy mode: %s", c.ProxyMode)
	}
	return nil
}

// ReadTokenFile reads an API token, warning when the file is readable by others.
func ReadTokenFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}

	if mode := info.Mode().Perm(); mode&0077 != 0 {
		log.Warn().Str("path", path).Msgf("token file has insecure permissions %04o; consider chmod 600", mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty")
	}
	return token, nil
}
