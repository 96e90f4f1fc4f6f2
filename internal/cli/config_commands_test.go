package cli

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rescale/rescale-browse/internal/config"
)

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	for _, path := range [][]string{
		{"files", "ls"},
		{"jobs", "ls"},
		{"browse"},
		{"config", "show"},
		{"config", "set"},
		{"config", "init"},
		{"version"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Errorf("command %v not found: %v", path, err)
			continue
		}
		if cmd.Short == "" {
			t.Errorf("command %v has no short description", path)
		}
	}

	ls, _, _ := root.Find([]string{"jobs", "ls"})
	for _, flag := range []string{"offset", "limit", "sort", "desc", "layout", "columns", "all", "search"} {
		if ls.Flags().Lookup(flag) == nil {
			t.Errorf("jobs ls is missing --%s", flag)
		}
	}
}

func TestSetConfigValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.csv")

	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"grid_columns", "6", false},
		{"default_layout", "grid", false},
		{"grid_columns", "40", true},
		{"page_size", "lots", true},
		{"colour", "blue", true},
	}

	for _, tt := range tests {
		err := setConfigValue(path, tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("setConfigValue(%s, %s) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}

	cfg, err := config.LoadConfigCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GridColumns != 6 || cfg.DefaultLayout != config.LayoutGrid {
		t.Errorf("saved config = %+v", cfg)
	}
}

func TestInitConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.csv")

	in := bufio.NewReader(strings.NewReader("\nsecret-key\n\ngrid\n3\n\n"))
	var out bytes.Buffer
	if err := initConfig(in, &out, path); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}

	token, err := os.ReadFile(filepath.Join(dir, "token"))
	if err != nil || string(token) != "secret-key" {
		t.Errorf("token file = %q, %v", token, err)
	}
	cfg, err := config.LoadConfigCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultLayout != config.LayoutGrid || cfg.GridColumns != 3 {
		t.Errorf("saved config = %+v", cfg)
	}
	if cfg.APIKey != "" {
		t.Error("API key must not be stored in config.csv")
	}
	if !strings.Contains(out.String(), "API key is required") {
		t.Error("expected the empty key to be rejected once")
	}
}

func TestInitConfig_NoKey(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	if err := initConfig(in, &bytes.Buffer{}, filepath.Join(t.TempDir(), "config.csv")); err == nil {
		t.Error("expected an error when no key is entered")
	}
}

func TestShowConfig_HidesKey(t *testing.T) {
	cfg := config.Default()
	cfg.APIKey = "abcdef123456"

	var out bytes.Buffer
	showConfig(&out, cfg, filepath.Join(t.TempDir(), "missing.csv"))

	s := out.String()
	if strings.Contains(s, "abcdef") {
		t.Error("API key leaked into config show")
	}
	if !strings.Contains(s, "<set (12 chars)>") {
		t.Errorf("missing key summary in:\n%s", s)
	}
	if !strings.Contains(s, "file does not exist") {
		t.Error("expected the missing file note")
	}
}
