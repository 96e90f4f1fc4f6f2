package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigCSV(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		file  string
		check func(*testing.T, *Config)
	}{
		{
			name: "full config",
			file: writeFile(t, dir, "full.csv", strings.Join([]string{
				"key,value",
				"api_base_url,https://eu.rescale.com",
				"proxy_mode,basic",
				"proxy_host,proxy.corp",
				"proxy_port,3128",
				"page_size,250",
				"default_layout,GRID",
				"grid_columns,6",
				"sort_field,size",
				"sort_ascending,false",
				"detailed_logging,1",
			}, "\n")),
			check: func(t *testing.T, cfg *Config) {
				if cfg.APIBaseURL != "https://eu.rescale.com" {
					t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
				}
				if cfg.ProxyMode != "basic" || cfg.ProxyHost != "proxy.corp" || cfg.ProxyPort != 3128 {
					t.Errorf("proxy = %s %s:%d", cfg.ProxyMode, cfg.ProxyHost, cfg.ProxyPort)
				}
				if cfg.PageSize != 250 {
					t.Errorf("PageSize = %d, want 250", cfg.PageSize)
				}
				if cfg.DefaultLayout != LayoutGrid || cfg.GridColumns != 6 {
					t.Errorf("layout = %s/%d", cfg.DefaultLayout, cfg.GridColumns)
				}
				if cfg.SortField != "size" || cfg.SortAscending {
					t.Errorf("sort = %s asc=%v", cfg.SortField, cfg.SortAscending)
				}
				if !cfg.DetailedLogging {
					t.Error("DetailedLogging should be true")
				}
			},
		},
		{
			name: "secrets are ignored",
			file: writeFile(t, dir, "secrets.csv", "api_key,abc\nproxy_password,hunter2\n"),
			check: func(t *testing.T, cfg *Config) {
				if cfg.APIKey != "" || cfg.ProxyPassword != "" {
					t.Error("secrets must not be loaded from the config file")
				}
			},
		},
		{
			name: "bad values keep defaults",
			file: writeFile(t, dir, "bad.csv", "page_size,lots\nunknown_key,1\n"),
			check: func(t *testing.T, cfg *Config) {
				if cfg.PageSize != Default().PageSize {
					t.Errorf("PageSize = %d, want default", cfg.PageSize)
				}
			},
		},
		{
			name: "non-existent file returns defaults",
			file: filepath.Join(dir, "missing.csv"),
			check: func(t *testing.T, cfg *Config) {
				if cfg.DefaultLayout != LayoutTable || cfg.SortField != "name" || !cfg.SortAscending {
					t.Errorf("unexpected defaults %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigCSV(tt.file)
			if err != nil {
				t.Fatalf("LoadConfigCSV() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestSaveConfigCSV_RoundTripSkipsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.csv")
	cfg := Default()
	cfg.APIKey = "secret"
	cfg.ProxyPassword = "secret"
	cfg.GridColumns = 8

	if err := SaveConfigCSV(cfg, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("secrets were written to disk")
	}

	loaded, err := LoadConfigCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.GridColumns != 8 {
		t.Errorf("GridColumns = %d, want 8", loaded.GridColumns)
	}
}

func TestSet(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("page_size", "50"); err != nil || cfg.PageSize != 50 {
		t.Errorf("Set(page_size) = %v, PageSize=%d", err, cfg.PageSize)
	}
	if err := cfg.Set("grid_columns", "x"); err == nil {
		t.Error("expected error for non-numeric grid_columns")
	}
	if err := cfg.Set("colour", "blue"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestMergeWithFlagsAndTokenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("RESCALE_API_URL", "")
	tokenFile := writeFile(t, dir, "token", "file_key\n")

	tests := []struct {
		name    string
		flagKey string
		envKey  string
		token   string
		url     string
		wantKey string
		wantURL string
	}{
		{"token file only", "", "", tokenFile, "", "file_key", "https://platform.rescale.com"},
		{"env beats token file", "", "env_key", tokenFile, "", "env_key", "https://platform.rescale.com"},
		{"flag beats env", "flag_key", "env_key", tokenFile, "", "flag_key", "https://platform.rescale.com"},
		{"url without scheme", "k", "", "", "kr.rescale.com", "k", "https://kr.rescale.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RESCALE_API_KEY", tt.envKey)
			cfg := Default()
			cfg.MergeWithFlagsAndTokenFile(tt.flagKey, tt.token, tt.url)
			if cfg.APIKey != tt.wantKey {
				t.Errorf("APIKey = %q, want %q", cfg.APIKey, tt.wantKey)
			}
			if cfg.APIBaseURL != tt.wantURL {
				t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, tt.wantURL)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.APIKey = "k"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with key", func(*Config) {}, false},
		{"missing key", func(c *Config) { c.APIKey = "" }, true},
		{"page size too large", func(c *Config) { c.PageSize = 5000 }, true},
		{"bad layout", func(c *Config) { c.DefaultLayout = "cards" }, true},
		{"too many columns", func(c *Config) { c.GridColumns = 40 }, true},
		{"bad proxy mode", func(c *Config) { c.ProxyMode = "socks" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSettings_IgnoresCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateSettings(); err != nil {
		t.Fatalf("defaults should be valid without a key: %v", err)
	}
	cfg.GridColumns = 0
	if err := cfg.ValidateSettings(); err == nil {
		t.Error("expected grid_columns error")
	}
}
