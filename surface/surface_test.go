package surface

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"weatherwall/bridge"
	"weatherwall/desktop"
	"weatherwall/settings"
)

// fakeView runs dispatched funcs on its own goroutine, standing in for the
// owning thread of a real webview.
type fakeView struct {
	hwnd desktop.HWND

	queue chan func()
	quit  chan struct{}
	once  sync.Once

	mu        sync.Mutex
	inits     []string
	evals     []string
	url       string
	bindings  map[string]any
	destroyed bool
}

func newFakeView(hwnd desktop.HWND) *fakeView {
	return &fakeView{
		hwnd:     hwnd,
		queue:    make(chan func(), 256),
		quit:     make(chan struct{}),
		bindings: map[string]any{},
	}
}

func (v *fakeView) Dispatch(f func()) {
	select {
	case v.queue <- f:
	case <-v.quit:
	}
}

func (v *fakeView) Eval(js string) {
	v.mu.Lock()
	v.evals = append(v.evals, js)
	v.mu.Unlock()
}

func (v *fakeView) Init(js string) {
	v.mu.Lock()
	v.inits = append(v.inits, js)
	v.mu.Unlock()
}

func (v *fakeView) Bind(name string, fn any) error {
	v.mu.Lock()
	v.bindings[name] = fn
	v.mu.Unlock()
	return nil
}

func (v *fakeView) Navigate(url string) {
	v.mu.Lock()
	v.url = url
	v.mu.Unlock()
}

func (v *fakeView) Handle() desktop.HWND { return v.hwnd }

func (v *fakeView) Run() {
	for {
		select {
		case f := <-v.queue:
			f()
		case <-v.quit:
			return
		}
	}
}

func (v *fakeView) Terminate() { v.once.Do(func() { close(v.quit) }) }

func (v *fakeView) Destroy() {
	v.mu.Lock()
	v.destroyed = true
	v.mu.Unlock()
}

// load simulates the page's load event calling the ready binding on the
// owning thread.
func (v *fakeView) load() {
	v.mu.Lock()
	fn, _ := v.bindings[readyBinding].(func())
	v.mu.Unlock()
	v.Dispatch(fn)
}

func (v *fakeView) scripts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.evals...)
}

type fakeLocator struct {
	calls atomic.Int32
}

func (l *fakeLocator) Refresh(context.Context) bool {
	l.calls.Add(1)
	return false
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(desktop.HWND) (desktop.Placement, error) {
	return desktop.Placement{}, desktop.ErrLayerNotFound
}

func (failingEmbedder) Unframe(desktop.HWND) error { return nil }

type harness struct {
	host    *Host
	view    *fakeView
	wm      *desktop.Fake
	layer   desktop.HWND
	locator *fakeLocator
	store   *settings.Store
	done    chan error
}

func start(t *testing.T, seed map[string]any, embedder Embedder) *harness {
	t.Helper()
	store := settings.Load(filepath.Join(t.TempDir(), "settings.json"))
	if len(seed) > 0 {
		if err := store.SetMany(seed); err != nil {
			t.Fatal(err)
		}
	}
	wm, layer := desktop.NewWallpaperDesktop(1920, 1080)
	hwnd := wm.AddTopLevel("WebView2Host")
	if embedder == nil {
		embedder = desktop.NewEmbedder(wm, 0)
	}
	view := newFakeView(hwnd)
	h := &harness{view: view, wm: wm, layer: layer, locator: &fakeLocator{}, store: store, done: make(chan error, 1)}
	h.host = New(func(int32, int32) View { return view }, bridge.New(), store, embedder, h.locator,
		Options{ContentURL: "file:///web/index.html", Width: 1920, Height: 1080})

	go func() { h.done <- h.host.Run() }()
	t.Cleanup(func() {
		h.host.Close()
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after Close")
		}
	})
	h.wait(t, Loading)
	return h
}

func (h *harness) wait(t *testing.T, s State) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.host.WaitState(ctx, s); err != nil {
		t.Fatal(err)
	}
}

// settle waits until every func dispatched so far has run.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 3; i++ {
		done := make(chan struct{})
		h.view.Dispatch(func() { close(done) })
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("owning thread stalled")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func indexOf(scripts []string, substr string) int {
	for i, s := range scripts {
		if strings.Contains(s, substr) {
			return i
		}
	}
	return -1
}

func TestStartupSequence(t *testing.T) {
	h := start(t, map[string]any{
		settings.KeyMapboxToken: "pk.test",
		settings.KeyLastLat:     48.85,
		settings.KeyLastLon:     2.35,
	}, nil)

	if h.view.url != "file:///web/index.html" {
		t.Errorf("navigated to %q", h.view.url)
	}
	if h.host.State() != Loading {
		t.Fatalf("state = %s before load, want loading", h.host.State())
	}

	h.view.load()
	h.wait(t, Embedded)
	h.settle(t)

	scripts := h.view.scripts()
	cred := indexOf(scripts, "localStorage.setItem('mapbox-access-token', 'pk.test')")
	loc := indexOf(scripts, "lat: 48.85, lon: 2.35")
	reload := indexOf(scripts, "location.reload()")
	if cred < 0 || loc < 0 || reload < 0 {
		t.Fatalf("missing startup scripts: %q", scripts)
	}
	if !(cred < loc && loc < reload) {
		t.Errorf("order credential=%d location=%d reload=%d", cred, loc, reload)
	}
	if indexOf(scripts, "google-pollen-api-key") >= 0 {
		t.Error("unset pollen key injected")
	}
	if n := h.locator.calls.Load(); n != 0 {
		t.Errorf("IP lookup ran %d times with a stored location", n)
	}

	w, _ := h.wm.Window(h.view.hwnd)
	if w.Parent != h.layer {
		t.Errorf("surface parent = %#x, want layer %#x", w.Parent, h.layer)
	}
}

func TestSurfaceStartsFrameless(t *testing.T) {
	h := start(t, nil, nil)
	w, _ := h.wm.Window(h.view.hwnd)
	if w.Style != desktop.StylePopup|desktop.StyleVisible {
		t.Errorf("style = %#x before embedding, want borderless popup", w.Style)
	}
	if w.W != 1920 || w.H != 1080 {
		t.Errorf("size = %dx%d, want full screen", w.W, w.H)
	}

	h.view.load()
	h.wait(t, Embedded)
	h.settle(t)
	if w, _ = h.wm.Window(h.view.hwnd); w.Style != desktop.StyleChild|desktop.StyleVisible {
		t.Errorf("style = %#x after embedding", w.Style)
	}
}

func TestStartupWithoutStoredLocation(t *testing.T) {
	h := start(t, nil, nil)
	h.view.load()
	h.wait(t, Embedded)
	h.settle(t)

	deadline := time.Now().Add(2 * time.Second)
	for h.locator.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := h.locator.calls.Load(); n != 1 {
		t.Errorf("IP lookup ran %d times, want 1", n)
	}
	if indexOf(h.view.scripts(), "location.reload()") >= 0 {
		t.Error("conditional reload issued without a credential")
	}
}

func TestStartupPollenKeyOnlySkipsReload(t *testing.T) {
	h := start(t, map[string]any{
		settings.KeyPollenKey: "AIza-test",
		settings.KeyLastLat:   10.0,
		settings.KeyLastLon:   20.0,
	}, nil)
	h.view.load()
	h.wait(t, Embedded)
	h.settle(t)

	scripts := h.view.scripts()
	if indexOf(scripts, "google-pollen-api-key") < 0 {
		t.Fatalf("pollen key not injected: %q", scripts)
	}
	if i := indexOf(scripts, "location.reload()"); i >= 0 {
		t.Errorf("reload issued without a map token: %q", scripts[i])
	}
}

func TestEmbedFailureStaysReady(t *testing.T) {
	h := start(t, nil, failingEmbedder{})
	h.view.load()
	h.wait(t, Ready)
	h.settle(t)

	if s := h.host.State(); s != Ready {
		t.Errorf("state = %s after failed embed, want ready", s)
	}
}

func TestReloadReinjectsOnly(t *testing.T) {
	h := start(t, map[string]any{
		settings.KeyPollenKey: "AIza-test",
		settings.KeyLastLat:   1.5,
		settings.KeyLastLon:   2.5,
	}, nil)
	h.view.load()
	h.wait(t, Embedded)
	h.settle(t)
	before := len(h.view.scripts())
	reparents := h.wm.Reparents

	h.view.load()
	h.settle(t)

	after := h.view.scripts()[before:]
	if indexOf(after, "google-pollen-api-key") < 0 || indexOf(after, "lat: 1.5") < 0 {
		t.Errorf("reload did not re-inject state: %q", after)
	}
	if indexOf(after, "location.reload()") >= 0 {
		t.Error("reload issued again after a page reload")
	}
	if h.wm.Reparents != reparents {
		t.Error("surface re-embedded after a page reload")
	}
	if h.host.State() != Embedded {
		t.Errorf("state = %s", h.host.State())
	}
}

func TestCloseEndsRun(t *testing.T) {
	h := start(t, nil, nil)
	h.host.Close()
	select {
	case err := <-h.done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
		h.done <- nil
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if !h.view.destroyed {
		t.Error("view not destroyed")
	}
}

func TestNoSurfaceIsFatal(t *testing.T) {
	h := New(func(int32, int32) View { return nil }, bridge.New(), settings.Load(filepath.Join(t.TempDir(), "s.json")),
		failingEmbedder{}, nil, Options{})
	if err := h.Run(); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("Run() = %v, want ErrNoSurface", err)
	}
}

func TestCloseBeforeRun(t *testing.T) {
	view := newFakeView(1)
	h := New(func(int32, int32) View { return view }, bridge.New(), settings.Load(filepath.Join(t.TempDir(), "s.json")),
		failingEmbedder{}, nil, Options{})
	h.Close()
	if err := h.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if !view.destroyed || h.State() != Created {
		t.Errorf("destroyed=%v state=%s", view.destroyed, h.State())
	}
}

func TestInitScript(t *testing.T) {
	store := settings.Load(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.SetMany(map[string]any{
		settings.KeyMapboxToken: "pk.it's\n",
		settings.KeyLastLat:     -33.86,
		settings.KeyLastLon:     151.2,
	}); err != nil {
		t.Fatal(err)
	}

	js := InitScript(store)
	for _, want := range []string{
		`localStorage.setItem('mapbox-access-token', 'pk.it\'s\n')`,
		"window.userLocation = { name: '', lat: -33.86, lon: 151.2 };",
		"window.__weatherwallReady()",
	} {
		if !strings.Contains(js, want) {
			t.Errorf("init script missing %q:\n%s", want, js)
		}
	}
	if strings.Contains(js, "google-pollen-api-key") {
		t.Error("init script seeds an unset credential")
	}
}

func TestInitScriptEscapesNUL(t *testing.T) {
	store := settings.Load(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.Set(settings.KeyMapboxToken, "pk\x00x"); err != nil {
		t.Fatal(err)
	}
	js := InitScript(store)
	if strings.ContainsRune(js, 0) {
		t.Error("init script contains a raw NUL")
	}
	if !strings.Contains(js, `'pk\x00x'`) {
		t.Errorf("init script:\n%s", js)
	}
}

func TestInitScriptEmptyStore(t *testing.T) {
	js := InitScript(settings.Load(filepath.Join(t.TempDir(), "settings.json")))
	if strings.Contains(js, "localStorage") || strings.Contains(js, "userLocation") {
		t.Errorf("empty store produced state:\n%s", js)
	}
	if !strings.Contains(js, readyBinding) {
		t.Error("load listener missing")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Created: "created", Loading: "loading", Ready: "ready", Embedded: "embedded", 9: "state(9)"} {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
