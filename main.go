package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"weatherwall/bridge"
	"weatherwall/clipboard"
	"weatherwall/config"
	"weatherwall/desktop"
	"weatherwall/location"
	"weatherwall/log"
	"weatherwall/login"
	"weatherwall/prompt"
	"weatherwall/settings"
	"weatherwall/shutdown"
	"weatherwall/surface"
	"weatherwall/tray"
)

var version = "dev"

// Window size when the display cannot be queried.
const (
	fallbackWidth  = 1280
	fallbackHeight = 720
)

var exitOnce sync.Once

func exit(reason string, code int) {
	exitOnce.Do(func() {
		log.SessionEnd(reason)
		log.Close()
		os.Exit(code)
	})
}

func run() {
	cfg, err := config.Load(config.ExeDir(), settingsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	log.SetCrashOutput()
	log.SetDebug(cfg.Debug)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open diagnostics log: %v\n", err)
	}
	log.SessionStart(version, cfg.ContentURL())

	settingsPath := cfg.SettingsPath
	if settingsPath == "" {
		settingsPath = settings.DefaultPath()
	}
	store := settings.Load(settingsPath)

	b := bridge.New(bridge.WithPolicy(bridge.ParsePolicy(cfg.PendingPolicy)))
	prompter := prompt.New()
	resolver := location.New(b, store,
		location.WithEndpoints(cfg.IPEndpoint, cfg.GeocodeEndpoint),
		location.WithTimeout(cfg.HTTPTimeout),
		location.WithPrompter(prompter),
	)

	wm := desktop.NewWindowManager()
	width, height := wm.ScreenSize()
	if width <= 0 || height <= 0 {
		width, height = fallbackWidth, fallbackHeight
	}
	host := surface.New(
		surface.NewWebView(filepath.Join(filepath.Dir(store.Path()), "WebView2")),
		b, store,
		desktop.NewEmbedder(wm, cfg.EmbedTimeout),
		resolver,
		surface.Options{ContentURL: cfg.ContentURL(), Width: width, Height: height},
	)

	controller := tray.New(tray.Config{
		Bridge:   b,
		Store:    store,
		Locator:  resolver,
		Prompter: prompter,
		Login:    login.System{},
		Surface:  host,
		Copy:     clipboard.Copy,
		Exit:     func() { exit("quit", 0) },
	})
	stop := shutdown.OnSignal(controller.Quit)
	defer stop()

	go tray.Run(controller)

	var runErr error
	onMain(func() { runErr = host.Run() })
	if runErr != nil {
		log.Errorf("surface: %v", runErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		exit("surface_failed", 1)
	}
	controller.Quit()
	exit("window_closed", 0)
}

// settingsDir is also searched for weatherwall.yaml.
func settingsDir() string {
	return filepath.Dir(settings.DefaultPath())
}
