// Package desktop attaches a top-level window behind the desktop icons so it
// renders as wallpaper.
//
// Windows keeps the wallpaper in a WorkerW window that Progman spawns on
// request (message 0x052C). The WorkerW that sits behind the icons is the
// top-level window enumerated right after the one hosting SHELLDLL_DefView.
// This layering is undocumented and varies between OS builds, so every lookup
// may come back empty; that is reported as ErrLayerNotFound and the caller
// keeps running as an ordinary window.
package desktop

import (
	"errors"
	"fmt"
	"time"
)

// HWND is an opaque OS window handle. Zero means "no window".
type HWND uintptr

const (
	ClassProgman  = "Progman"
	ClassDefView  = "SHELLDLL_DefView"
	ClassWorkerW  = "WorkerW"
	MsgSpawnLayer = 0x052C

	// Window style written on the embedded window: WS_CHILD | WS_VISIBLE.
	// A surface left top-level gets WS_POPUP | WS_VISIBLE instead.
	StylePopup   = 0x80000000
	StyleChild   = 0x40000000
	StyleVisible = 0x10000000
)

// DefaultSpawnTimeout bounds the Progman request.
const DefaultSpawnTimeout = time.Second

var (
	ErrInvalidHandle = errors.New("desktop: invalid window handle")
	ErrLayerNotFound = errors.New("desktop: wallpaper layer not found")
	ErrNoDisplay     = errors.New("desktop: primary display size unavailable")
	ErrReparent      = errors.New("desktop: reparent failed")
)

// WindowManager is the slice of the OS window manager the embedder uses.
// Every query returns zero when the OS has no answer.
type WindowManager interface {
	FindWindow(class string) HWND
	// FindWindowEx looks for a window of class among the children of parent
	// (or among top-level windows when parent is zero), starting after after.
	FindWindowEx(parent, after HWND, class string) HWND
	// SendMessageTimeout reports whether the target answered in time.
	SendMessageTimeout(hwnd HWND, msg uint32, wParam, lParam uintptr, timeout time.Duration) bool
	// EnumWindows visits top-level windows in z-order until fn returns false.
	EnumWindows(fn func(HWND) bool)
	// SetParent returns the previous parent, or zero on failure.
	SetParent(child, parent HWND) HWND
	SetStyle(hwnd HWND, style uintptr)
	MoveWindow(hwnd HWND, x, y, width, height int32) bool
	ScreenSize() (width, height int32)
}

// Placement describes a successful embedding.
type Placement struct {
	Layer         HWND
	Width, Height int32
}

// Embedder runs the embedding procedure against a WindowManager. It holds no
// window handles between calls.
type Embedder struct {
	wm      WindowManager
	timeout time.Duration
}

func NewEmbedder(wm WindowManager, spawnTimeout time.Duration) *Embedder {
	if spawnTimeout <= 0 {
		spawnTimeout = DefaultSpawnTimeout
	}
	return &Embedder{wm: wm, timeout: spawnTimeout}
}

// FindLayer asks Progman for the wallpaper WorkerW and returns it.
func (e *Embedder) FindLayer() (HWND, error) {
	progman := e.wm.FindWindow(ClassProgman)
	if progman == 0 {
		return 0, fmt.Errorf("%w: no %s window", ErrLayerNotFound, ClassProgman)
	}

	// Progman may ignore this; the enumeration below decides.
	e.wm.SendMessageTimeout(progman, MsgSpawnLayer, 0, 0, e.timeout)

	var worker HWND
	e.wm.EnumWindows(func(top HWND) bool {
		if e.wm.FindWindowEx(top, 0, ClassDefView) != 0 {
			worker = e.wm.FindWindowEx(0, top, ClassWorkerW)
		}
		return true
	})
	if worker == 0 {
		return 0, fmt.Errorf("%w: no %s behind %s", ErrLayerNotFound, ClassWorkerW, ClassDefView)
	}
	return worker, nil
}

// Embed reparents hwnd into the wallpaper layer, makes it a borderless child
// and stretches it over the primary display. Calling it again with the same
// handle re-applies the same parent, style and geometry. On error hwnd has
// not been modified, except for ErrReparent where the OS refused the change.
func (e *Embedder) Embed(hwnd HWND) (Placement, error) {
	if hwnd == 0 {
		return Placement{}, ErrInvalidHandle
	}

	layer, err := e.FindLayer()
	if err != nil {
		return Placement{}, err
	}

	width, height := e.wm.ScreenSize()
	if width <= 0 || height <= 0 {
		return Placement{}, ErrNoDisplay
	}

	if e.wm.SetParent(hwnd, layer) == 0 {
		return Placement{}, fmt.Errorf("%w: window %#x into %#x", ErrReparent, uintptr(hwnd), uintptr(layer))
	}
	e.wm.SetStyle(hwnd, StyleChild|StyleVisible)
	e.wm.MoveWindow(hwnd, 0, 0, width, height)

	return Placement{Layer: layer, Width: width, Height: height}, nil
}

// Unframe drops the caption and borders of a top-level hwnd and stretches
// it over the primary display.
func (e *Embedder) Unframe(hwnd HWND) error {
	if hwnd == 0 {
		return ErrInvalidHandle
	}
	width, height := e.wm.ScreenSize()
	if width <= 0 || height <= 0 {
		return ErrNoDisplay
	}
	e.wm.SetStyle(hwnd, StylePopup|StyleVisible)
	e.wm.MoveWindow(hwnd, 0, 0, width, height)
	return nil
}
