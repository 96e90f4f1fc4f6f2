// Package gui provides the graphical resource browser.
package gui

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/version"
)

var (
	// guiLogger is the package-level logger for GUI mode
	guiLogger *logging.Logger
)

// LaunchGUI opens the browser window and blocks until it is closed.
func LaunchGUI(cfg *config.Config) error {
	if err := checkDisplay(); err != nil {
		return err
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	defer bus.Close()

	guiLogger = logging.NewLogger("gui", bus)

	// In GUI mode, default to WarnLevel for a cleaner console.
	debug := os.Getenv("RESCALE_DEBUG") != "" || cfg.DetailedLogging
	if debug {
		logging.SetGlobalLevel(zerolog.DebugLevel)
		guiLogger.Info().Msg("Debug logging enabled")
	} else {
		logging.SetGlobalLevel(zerolog.WarnLevel)
	}

	if cfg.APIKey == "" {
		return fmt.Errorf("no API key configured: set RESCALE_API_KEY, use --token-file, or save a token to %s", config.GetDefaultTokenPath())
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if debug {
		go monitorGoroutines(ctx)
	}

	myApp := app.NewWithID("com.rescale.browse")
	myApp.Settings().SetTheme(&browseTheme{})

	mainWindow := myApp.NewWindow("Rescale Browse " + version.Version)
	mainWindow.SetMaster()

	browser, err := NewBrowser(ctx, cfg, client, bus, guiLogger.Component("browser"), mainWindow)
	if err != nil {
		return err
	}

	mainWindow.SetContent(browser.Build())
	mainWindow.Resize(fyne.NewSize(1100, 700))
	mainWindow.CenterOnScreen()
	mainWindow.SetOnClosed(cancel)

	browser.Start()
	mainWindow.ShowAndRun()

	return nil
}

func checkDisplay() error {
	if runtime.GOOS != "linux" {
		return nil
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return fmt.Errorf("GUI mode requires a display. No display detected.\n" +
			"DISPLAY and WAYLAND_DISPLAY are not set.\n" +
			"Use 'rescale-browse files ls' or 'rescale-browse jobs ls' instead")
	}
	return nil
}

var goroutineCount int64

func monitorGoroutines(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		count := runtime.NumGoroutine()
		prev := atomic.SwapInt64(&goroutineCount, int64(count))
		delta := int64(count) - prev

		guiLogger.Debug().
			Int("count", count).
			Int64("delta", delta).
			Msg("[MONITOR] Goroutines")

		if prev > 0 && delta > 20 {
			guiLogger.Warn().
				Int64("delta", delta).
				Msg("[MONITOR] Rapid goroutine growth")
		}
	}
}
