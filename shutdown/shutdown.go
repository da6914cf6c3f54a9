// Package shutdown routes OS termination signals into the application's
// normal quit path.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
)

// OnSignal calls fn once when a termination signal arrives. stop unregisters
// the handler; fn is not called after stop returns unless it already started.
func OnSignal(fn func()) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, quitSignals...)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			fn()
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
