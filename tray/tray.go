// Package tray is the application's only control surface: a notification
// area icon whose menu drives the page through the command bridge.
package tray

import (
	"context"
	"strconv"
	"sync"

	"weatherwall/bridge"
	"weatherwall/log"
	"weatherwall/login"
	"weatherwall/prompt"
	"weatherwall/settings"
)

const (
	AppTitle = "Weather Wallpaper"
	Tooltip  = "Weather Wallpaper"
)

type Action int

const (
	RefreshLocation Action = iota
	SearchLocation
	SetMapboxToken
	SetPollenKey
	CopyLocation
	ZoomToGlobe
	ZoomToCountry
	ZoomToCity
	ZoomToStreet
	ShowFlights
	ShowWeatherRadar
	ShowPollen
	ShowLabels
	SpinGlobe
	LaunchAtLogin
	Quit
)

// Item is one entry of the menu model.
type Item struct {
	Action    Action
	Title     string
	Checkable bool
	Checked   bool
	// Separator is drawn above the item.
	Separator bool
}

type Locator interface {
	Refresh(ctx context.Context) bool
	SearchInteractive(ctx context.Context) bool
}

type Store interface {
	String(key, def string) string
	Float(key string) (float64, bool)
	Set(key string, value any) error
}

type Autostart interface {
	Enabled() bool
	Enable() error
	Disable() error
}

// Closer is the surface host.
type Closer interface {
	Close()
}

type Config struct {
	Bridge   bridge.Submitter
	Store    Store
	Locator  Locator
	Prompter prompt.Prompter
	Login    Autostart
	Surface  Closer
	// Copy writes to the clipboard.
	Copy func(text string) error
	// Exit ends the process. Called last by Quit.
	Exit func()
	// Go runs background work; nil means a plain goroutine.
	Go func(func())
}

type credentialPrompt struct {
	cred    bridge.Credential
	title   string
	message string
}

var credentialPrompts = map[Action]credentialPrompt{
	SetMapboxToken: {
		cred:    bridge.MapboxToken,
		title:   "Mapbox Access Token",
		message: "Enter your Mapbox public token (pk.eyJ…).\nGet one free at mapbox.com/account/access-tokens",
	},
	SetPollenKey: {
		cred:    bridge.PollenKey,
		title:   "Google Pollen API Key",
		message: "Enter your Google Pollen API key.\nGet one at console.cloud.google.com",
	},
}

var zoomActions = map[Action]ZoomLevel{
	ZoomToGlobe:   ZoomGlobe,
	ZoomToCountry: ZoomCountry,
	ZoomToCity:    ZoomCity,
	ZoomToStreet:  ZoomStreet,
}

var layerActions = map[Action]Layer{
	ShowFlights:      Flights,
	ShowWeatherRadar: WeatherRadar,
	ShowPollen:       PollenAirQuality,
	ShowLabels:       Labels,
	SpinGlobe:        Spin,
}

type Controller struct {
	cfg   Config
	state *State

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	stopLoop func()
	quitOnce sync.Once
	quitCh   chan struct{}
}

func New(cfg Config) *Controller {
	if cfg.Go == nil {
		cfg.Go = func(f func()) { go f() }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:    cfg,
		state:  NewState(),
		ctx:    ctx,
		cancel: cancel,
		quitCh: make(chan struct{}),
	}
}

func (c *Controller) State() *State { return c.state }

// SetStopLoop registers the function that ends the tray's event loop.
func (c *Controller) SetStopLoop(fn func()) {
	c.mu.Lock()
	c.stopLoop = fn
	c.mu.Unlock()
}

// Done is closed once Quit has started.
func (c *Controller) Done() <-chan struct{} { return c.quitCh }

// Items returns the menu in display order with current check states.
func (c *Controller) Items() []Item {
	zoom := c.state.Zoom()
	loginOn := c.cfg.Login != nil && c.cfg.Login.Enabled()
	layer := func(a Action, title string, sep bool) Item {
		return Item{Action: a, Title: title, Checkable: true, Checked: c.state.Enabled(layerActions[a]), Separator: sep}
	}
	zoomItem := func(a Action, title string, sep bool) Item {
		return Item{Action: a, Title: title, Checkable: true, Checked: zoom == zoomActions[a], Separator: sep}
	}
	return []Item{
		{Action: RefreshLocation, Title: "Refresh Location"},
		{Action: SearchLocation, Title: "Search Location…"},
		{Action: SetMapboxToken, Title: "Set Mapbox Token…"},
		{Action: SetPollenKey, Title: "Set Pollen API Key…"},
		{Action: CopyLocation, Title: "Copy Location"},
		zoomItem(ZoomToGlobe, "Zoom: Globe", true),
		zoomItem(ZoomToCountry, "Zoom: Country", false),
		zoomItem(ZoomToCity, "Zoom: City", false),
		zoomItem(ZoomToStreet, "Zoom: Street", false),
		layer(ShowFlights, "Show Flights", true),
		layer(ShowWeatherRadar, "Show Weather Radar", false),
		layer(ShowPollen, "Show Pollen & Air Quality", false),
		layer(ShowLabels, "Show Labels", false),
		layer(SpinGlobe, "Spin Globe", false),
		{Action: LaunchAtLogin, Title: "Launch at Login", Checkable: true, Checked: loginOn, Separator: true},
		{Action: Quit, Title: "Quit " + AppTitle, Separator: true},
	}
}

// Invoke runs the handler for a. It is called from the tray's event loop;
// SearchLocation and the credential prompts block until the dialog closes.
func (c *Controller) Invoke(a Action) {
	if z, ok := zoomActions[a]; ok {
		c.state.SetZoom(z)
		c.cfg.Bridge.Submit(bridge.SetZoom{Level: z.Value()})
		return
	}
	if l, ok := layerActions[a]; ok {
		on := c.state.Flip(l)
		c.cfg.Bridge.Submit(bridge.SetToggle{Func: l.Setter(), Enabled: on})
		return
	}
	if p, ok := credentialPrompts[a]; ok {
		c.setCredential(p)
		return
	}

	switch a {
	case RefreshLocation:
		c.cfg.Go(func() { c.cfg.Locator.Refresh(c.ctx) })
	case SearchLocation:
		c.cfg.Locator.SearchInteractive(c.ctx)
	case CopyLocation:
		c.copyLocation()
	case LaunchAtLogin:
		c.toggleLogin()
	case Quit:
		c.Quit()
	default:
		log.Warnf("tray: unknown action %d", int(a))
	}
}

func (c *Controller) setCredential(p credentialPrompt) {
	if c.cfg.Prompter == nil {
		return
	}
	value, ok := prompt.AskTrimmed(c.cfg.Prompter, prompt.Request{
		Title:   p.title,
		Message: p.message,
		Initial: c.cfg.Store.String(p.cred.StorageKey, ""),
	})
	if !ok {
		return
	}
	if err := c.cfg.Store.Set(p.cred.StorageKey, value); err != nil {
		log.Errorf("tray: save %s: %v", p.cred.StorageKey, err)
	}
	c.cfg.Bridge.Submit(bridge.SetCredential{Credential: p.cred, Value: value, Refresh: true})
}

func (c *Controller) copyLocation() {
	lat, ok1 := c.cfg.Store.Float(settings.KeyLastLat)
	lon, ok2 := c.cfg.Store.Float(settings.KeyLastLon)
	if !ok1 || !ok2 {
		log.Info("tray: no location to copy")
		return
	}
	if c.cfg.Copy == nil {
		return
	}
	text := strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lon, 'f', -1, 64)
	if err := c.cfg.Copy(text); err != nil {
		log.Warnf("tray: copy location: %v", err)
	}
}

// toggleLogin never fails the menu action; the checkmark is re-read from the
// OS on the next render.
func (c *Controller) toggleLogin() {
	if c.cfg.Login == nil {
		return
	}
	on, err := login.Toggle(c.cfg.Login)
	if err != nil {
		log.Warnf("tray: launch at login: %v", err)
		return
	}
	log.Infof("tray: launch at login %v", on)
}

// Quit stops the tray loop, closes the surface and exits, in that order.
// Later calls do nothing.
func (c *Controller) Quit() {
	c.quitOnce.Do(func() {
		close(c.quitCh)
		c.cancel()

		c.mu.Lock()
		stop := c.stopLoop
		c.mu.Unlock()
		if stop != nil {
			stop()
		}
		if c.cfg.Surface != nil {
			c.cfg.Surface.Close()
		}
		if c.cfg.Exit != nil {
			c.cfg.Exit()
		}
	})
}
