//go:build windows

package desktop

import (
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
)

const smtoNormal = 0x0000

// lxn/win does not wrap these.
var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	procFindWindowExW       = user32.NewProc("FindWindowExW")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

// EnumWindows callbacks are routed through one trampoline; syscall.NewCallback
// slots are never freed.
var (
	enumMu       sync.Mutex
	enumFn       func(HWND) bool
	enumCallback = syscall.NewCallback(func(hwnd win.HWND, _ uintptr) uintptr {
		if enumFn(HWND(hwnd)) {
			return 1
		}
		return 0
	})
)

type win32 struct{}

// NewWindowManager returns the user32-backed WindowManager.
func NewWindowManager() WindowManager {
	return win32{}
}

func utf16(s string) *uint16 {
	if s == "" {
		return nil
	}
	p, err := syscall.UTF16PtrFromString(s)
	if err != nil {
		return nil
	}
	return p
}

func (win32) FindWindow(class string) HWND {
	return HWND(win.FindWindow(utf16(class), nil))
}

func (win32) FindWindowEx(parent, after HWND, class string) HWND {
	r, _, _ := procFindWindowExW.Call(
		uintptr(parent),
		uintptr(after),
		uintptr(unsafe.Pointer(utf16(class))),
		0,
	)
	return HWND(r)
}

func (win32) SendMessageTimeout(hwnd HWND, msg uint32, wParam, lParam uintptr, timeout time.Duration) bool {
	var result uintptr
	r, _, _ := procSendMessageTimeoutW.Call(
		uintptr(hwnd),
		uintptr(msg),
		wParam,
		lParam,
		smtoNormal,
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&result)),
	)
	return r != 0
}

func (win32) EnumWindows(fn func(HWND) bool) {
	enumMu.Lock()
	defer enumMu.Unlock()
	enumFn = fn
	procEnumWindows.Call(enumCallback, 0)
	enumFn = nil
}

func (win32) SetParent(child, parent HWND) HWND {
	return HWND(win.SetParent(win.HWND(child), win.HWND(parent)))
}

// SetStyle also flushes the frame so a removed caption disappears at once.
func (win32) SetStyle(hwnd HWND, style uintptr) {
	win.SetWindowLongPtr(win.HWND(hwnd), win.GWL_STYLE, style)
	win.SetWindowPos(win.HWND(hwnd), 0, 0, 0, 0, 0,
		win.SWP_NOMOVE|win.SWP_NOSIZE|win.SWP_NOZORDER|win.SWP_NOACTIVATE|win.SWP_FRAMECHANGED)
}

func (win32) MoveWindow(hwnd HWND, x, y, width, height int32) bool {
	return win.MoveWindow(win.HWND(hwnd), x, y, width, height, true)
}

func (win32) ScreenSize() (int32, int32) {
	return win.GetSystemMetrics(win.SM_CXSCREEN), win.GetSystemMetrics(win.SM_CYSCREEN)
}
