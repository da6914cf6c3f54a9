package desktop

import (
	"slices"
	"sync"
	"time"
)

// FakeDesktop is the handle Fake reports as the parent of top-level windows.
const FakeDesktop HWND = 0x10010

// FakeWindow is the state Fake keeps per window.
type FakeWindow struct {
	Class  string
	Parent HWND
	Style  uintptr
	X, Y   int32
	W, H   int32
}

// Fake is an in-memory WindowManager: a z-ordered list of top-level windows
// with child windows hanging off them.
type Fake struct {
	mu         sync.Mutex
	windows    map[HWND]*FakeWindow
	topLevel   []HWND
	next       HWND
	screenW    int32
	screenH    int32
	progmanAck bool

	// RefuseReparent makes SetParent fail.
	RefuseReparent bool
	// SpawnOnMessage makes the Progman message create the WorkerW layer,
	// the way Explorer does on first request.
	SpawnOnMessage bool

	Messages  int
	Reparents int
}

func NewFake(screenW, screenH int32) *Fake {
	return &Fake{windows: map[HWND]*FakeWindow{}, next: 0x100, screenW: screenW, screenH: screenH}
}

// AddTopLevel appends a top-level window at the bottom of the z-order.
func (f *Fake) AddTopLevel(class string) HWND {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addTopLevel(class)
}

func (f *Fake) addTopLevel(class string) HWND {
	f.next++
	h := f.next
	f.windows[h] = &FakeWindow{Class: class, Parent: FakeDesktop}
	f.topLevel = append(f.topLevel, h)
	return h
}

// AddChild creates a child of parent.
func (f *Fake) AddChild(parent HWND, class string) HWND {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	h := f.next
	f.windows[h] = &FakeWindow{Class: class, Parent: parent}
	return h
}

// Window returns a copy of the window's state.
func (f *Fake) Window(h HWND) (FakeWindow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return FakeWindow{}, false
	}
	return *w, true
}

// NewWallpaperDesktop builds the usual Explorer layout: Progman, a WorkerW
// hosting the icon view, and the empty WorkerW right after it.
func NewWallpaperDesktop(screenW, screenH int32) (f *Fake, layer HWND) {
	f = NewFake(screenW, screenH)
	f.AddTopLevel("Shell_TrayWnd")
	icons := f.AddTopLevel(ClassWorkerW)
	f.AddChild(icons, ClassDefView)
	layer = f.AddTopLevel(ClassWorkerW)
	f.AddTopLevel(ClassProgman)
	return f, layer
}

func (f *Fake) FindWindow(class string) HWND {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.topLevel {
		if f.windows[h].Class == class {
			return h
		}
	}
	return 0
}

func (f *Fake) FindWindowEx(parent, after HWND, class string) HWND {
	f.mu.Lock()
	defer f.mu.Unlock()
	if parent == 0 {
		start := 0
		if after != 0 {
			i := slices.Index(f.topLevel, after)
			if i < 0 {
				return 0
			}
			start = i + 1
		}
		for _, h := range f.topLevel[start:] {
			if f.windows[h].Class == class {
				return h
			}
		}
		return 0
	}
	for h, w := range f.windows {
		if w.Parent == parent && w.Class == class && h != after {
			return h
		}
	}
	return 0
}

func (f *Fake) SendMessageTimeout(hwnd HWND, msg uint32, _, _ uintptr, _ time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages++
	w, ok := f.windows[hwnd]
	if !ok {
		return false
	}
	if msg == MsgSpawnLayer && w.Class == ClassProgman && f.SpawnOnMessage && !f.progmanAck {
		f.progmanAck = true
		icons := f.addTopLevel(ClassWorkerW)
		f.next++
		f.windows[f.next] = &FakeWindow{Class: ClassDefView, Parent: icons}
		f.addTopLevel(ClassWorkerW)
	}
	return true
}

func (f *Fake) EnumWindows(fn func(HWND) bool) {
	f.mu.Lock()
	tops := slices.Clone(f.topLevel)
	f.mu.Unlock()
	for _, h := range tops {
		if !fn(h) {
			return
		}
	}
}

func (f *Fake) SetParent(child, parent HWND) HWND {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[child]
	if !ok || f.RefuseReparent {
		return 0
	}
	if _, ok := f.windows[parent]; !ok {
		return 0
	}
	prev := w.Parent
	if prev == FakeDesktop {
		f.topLevel = slices.DeleteFunc(f.topLevel, func(h HWND) bool { return h == child })
	}
	w.Parent = parent
	f.Reparents++
	return prev
}

func (f *Fake) SetStyle(hwnd HWND, style uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[hwnd]; ok {
		w.Style = style
	}
}

func (f *Fake) MoveWindow(hwnd HWND, x, y, width, height int32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[hwnd]
	if !ok {
		return false
	}
	w.X, w.Y, w.W, w.H = x, y, width, height
	return true
}

func (f *Fake) ScreenSize() (int32, int32) {
	return f.screenW, f.screenH
}
