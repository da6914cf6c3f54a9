//go:build !windows

package desktop

import "time"

// headless answers every query with zero, so Embed always soft-fails.
type headless struct{}

// NewWindowManager returns a WindowManager that never finds a wallpaper
// layer on this platform.
func NewWindowManager() WindowManager {
	return headless{}
}

func (headless) FindWindow(string) HWND                                                { return 0 }
func (headless) FindWindowEx(HWND, HWND, string) HWND                                  { return 0 }
func (headless) SendMessageTimeout(HWND, uint32, uintptr, uintptr, time.Duration) bool { return false }
func (headless) EnumWindows(func(HWND) bool)                                           {}
func (headless) SetParent(HWND, HWND) HWND                                             { return 0 }
func (headless) SetStyle(HWND, uintptr)                                                {}
func (headless) MoveWindow(HWND, int32, int32, int32, int32) bool                      { return false }
func (headless) ScreenSize() (int32, int32)                                            { return 0, 0 }
