//go:build windows

package shutdown

import (
	"os"
	"syscall"
)

// The runtime reports console close, logoff and system shutdown as SIGTERM.
var quitSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
