// Package surface owns the single rendering surface: it creates the webview,
// feeds it persisted state once the content has loaded, and asks the
// embedder to put it behind the desktop icons.
//
// The view's owning thread is the goroutine that calls Host.Run. Only that
// thread touches the view directly; everything else goes through Dispatch.
package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"weatherwall/bridge"
	"weatherwall/desktop"
	"weatherwall/log"
	"weatherwall/settings"
)

type State int32

const (
	Created State = iota
	Loading
	Ready
	Embedded
)

var stateNames = [...]string{"created", "loading", "ready", "embedded"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

// ErrNoSurface is returned by Run when the view could not be constructed.
// The process cannot continue without it.
var ErrNoSurface = errors.New("rendering surface unavailable")

// readyBinding is the global the content calls when its load event fires.
const readyBinding = "__weatherwallReady"

// View is a rendering surface. Dispatch and Terminate-via-Dispatch are the
// only calls allowed off the owning thread.
type View interface {
	Dispatch(f func())
	Eval(js string)
	Init(js string)
	Bind(name string, fn any) error
	Navigate(url string)
	Handle() desktop.HWND
	Run()
	Terminate()
	Destroy()
}

// Factory builds a view sized width x height. It returns nil on failure.
type Factory func(width, height int32) View

type Embedder interface {
	Embed(hwnd desktop.HWND) (desktop.Placement, error)
	// Unframe makes hwnd a borderless full-screen window.
	Unframe(hwnd desktop.HWND) error
}

// Locator is the IP path of the location resolver.
type Locator interface {
	Refresh(ctx context.Context) bool
}

// Settings is the read side of the settings store.
type Settings interface {
	String(key, def string) string
	Float(key string) (float64, bool)
}

type Options struct {
	ContentURL string
	Width      int32
	Height     int32
}

// credentials are injected in this order; the settings key is the
// localStorage key.
var credentials = []bridge.Credential{bridge.MapboxToken, bridge.PollenKey}

type Host struct {
	factory  Factory
	bridge   *bridge.Bridge
	store    Settings
	embedder Embedder
	locator  Locator
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	changed chan struct{}
	view    View
	loads   int
	closed  bool
}

func New(factory Factory, b *bridge.Bridge, store Settings, embedder Embedder, locator Locator, opts Options) *Host {
	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		factory:  factory,
		bridge:   b,
		store:    store,
		embedder: embedder,
		locator:  locator,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		changed:  make(chan struct{}),
	}
}

// Run creates the view and runs its loop on the calling goroutine until
// Close. The caller must be locked to its OS thread.
func (h *Host) Run() error {
	v := h.factory(h.opts.Width, h.opts.Height)
	if v == nil {
		return ErrNoSurface
	}
	defer h.cancel()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		v.Destroy()
		return nil
	}
	h.view = v
	h.mu.Unlock()

	if err := h.embedder.Unframe(v.Handle()); err != nil {
		log.Warnf("surface: keeping window frame: %v", err)
	}
	v.Init(InitScript(h.store))
	if err := v.Bind(readyBinding, h.onLoad); err != nil {
		h.teardown(v)
		return fmt.Errorf("bind %s: %w", readyBinding, err)
	}
	v.Navigate(h.opts.ContentURL)
	h.bridge.Attach(v)
	h.setState(Loading)

	v.Run()

	h.teardown(v)
	return nil
}

func (h *Host) teardown(v View) {
	h.bridge.Detach()
	h.mu.Lock()
	h.view = nil
	h.mu.Unlock()
	v.Destroy()
}

// Close asks the view's loop to end. Safe from any goroutine and before Run.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.cancel()
	if v := h.view; v != nil {
		v.Dispatch(v.Terminate)
	}
}

func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// WaitState blocks until the host has reached s or ctx is done.
func (h *Host) WaitState(ctx context.Context, s State) error {
	for {
		h.mu.Lock()
		cur, ch := h.state, h.changed
		h.mu.Unlock()
		if cur >= s {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s (at %s): %w", s, cur, ctx.Err())
		}
	}
}

// setState only moves forward.
func (h *Host) setState(s State) {
	h.mu.Lock()
	from := h.state
	if s <= from {
		h.mu.Unlock()
		return
	}
	h.state = s
	close(h.changed)
	h.changed = make(chan struct{})
	h.mu.Unlock()
	log.StateChange(from.String(), s.String())
}

// dispatch runs f on the owning thread if the view is still alive.
func (h *Host) dispatch(f func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.view != nil {
		h.view.Dispatch(f)
	}
}

// onLoad runs on the owning thread for every load-complete notification and
// must not block it.
func (h *Host) onLoad() {
	h.mu.Lock()
	h.loads++
	first := h.loads == 1
	h.mu.Unlock()

	if !first {
		go h.reinject()
		return
	}
	h.setState(Ready)
	go h.startup()
}

func (h *Host) startup() {
	mapInit := h.injectCredentials()
	if !h.injectLocation() && h.locator != nil {
		go h.locator.Refresh(h.ctx)
	}
	if mapInit {
		h.bridge.Submit(bridge.ReloadIfUninitialized{})
	}
	h.dispatch(h.embed)
}

// reinject restores state after the content reloaded itself.
func (h *Host) reinject() {
	h.injectCredentials()
	h.injectLocation()
}

// injectCredentials reports whether a credential the map reads at start
// was injected.
func (h *Host) injectCredentials() bool {
	mapInit := false
	for _, c := range credentials {
		if v := h.store.String(c.StorageKey, ""); v != "" {
			h.bridge.Submit(bridge.SetCredential{Credential: c, Value: v})
			mapInit = mapInit || c.MapInit
		}
	}
	return mapInit
}

func (h *Host) injectLocation() bool {
	lat, ok1 := h.store.Float(settings.KeyLastLat)
	lon, ok2 := h.store.Float(settings.KeyLastLon)
	if !ok1 || !ok2 {
		return false
	}
	h.bridge.Submit(bridge.SetLocation{Lat: lat, Lon: lon})
	return true
}

// embed runs on the owning thread. Failure leaves the surface as an
// ordinary top-level window in state Ready.
func (h *Host) embed() {
	h.mu.Lock()
	v := h.view
	h.mu.Unlock()
	if v == nil {
		return
	}
	hwnd := v.Handle()
	p, err := h.embedder.Embed(hwnd)
	log.Embedded(uintptr(hwnd), uintptr(p.Layer), p.Width, p.Height, err)
	if err != nil {
		log.Warnf("surface: running as a normal window: %v", err)
		return
	}
	h.setState(Embedded)
}
