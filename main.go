// Rescale Browse - virtualized CLI and GUI browser for Rescale files and jobs.
//
// - No args + display available → GUI mode
// - No args + no display → CLI help
// - --gui → GUI mode
// - --cli → CLI mode (force)
// - CLI subcommands/flags → CLI mode
package main

import (
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/rescale/rescale-browse/internal/cli"
	"github.com/rescale/rescale-browse/internal/gui"
)

func main() {
	if isCLIMode(os.Args[1:], hasDisplay()) {
		if err := cli.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := gui.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func hasDisplay() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// cliWords are subcommands and flags that always mean CLI mode.
var cliWords = []string{
	"files", "jobs", "config", "version", "completion", "help", "browse",
	"--help", "-h", "--version",
}

// isCLIMode decides between CLI and GUI from the arguments.
//
// CLI mode when --cli, a subcommand or a help/version flag is present, when there is
// no display, or for anything unrecognised. GUI mode for --gui, or when the only
// arguments are GUI launcher flags and a display is available.
func isCLIMode(args []string, display bool) bool {
	if slices.Contains(args, "--cli") {
		return true
	}
	if slices.Contains(args, "--gui") {
		return false
	}
	for _, arg := range args {
		if slices.Contains(cliWords, arg) {
			return true
		}
	}
	if !display {
		return true
	}
	return !onlyLauncherFlags(args)
}

// onlyLauncherFlags reports whether args consist solely of flags gui.Run understands.
func onlyLauncherFlags(args []string) bool {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c", "--api-key", "--token-file", "--api-url":
			i++
		default:
			return false
		}
	}
	return true
}
