//go:build windows

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	mainthread.Init(run)
}

// onMain runs f on the process main thread, which owns the surface window.
func onMain(f func()) {
	mainthread.Call(f)
}
