package main

import "testing"

func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		display bool
		want    bool
	}{
		{"no args with display", nil, true, false},
		{"no args headless", nil, false, true},
		{"force cli", []string{"--cli"}, true, true},
		{"force gui", []string{"--gui"}, false, false},
		{"subcommand", []string{"jobs", "ls"}, true, true},
		{"help", []string{"--help"}, true, true},
		{"launcher flags", []string{"-c", "x.csv", "--api-url", "eu"}, true, false},
		{"launcher flags headless", []string{"-c", "x.csv"}, false, true},
		{"unknown", []string{"jbos"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCLIMode(tt.args, tt.display); got != tt.want {
				t.Errorf("isCLIMode(%v, %v) = %v, want %v", tt.args, tt.display, got, tt.want)
			}
		})
	}
}
