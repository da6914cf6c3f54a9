//go:build !windows

package shutdown

import (
	"os"
	"syscall"
)

// SIGHUP is included so closing the launching terminal quits cleanly.
var quitSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
