//go:build !windows

package tray

import "weatherwall/log"

// Run has no icon to show on this platform; it blocks until Quit.
func Run(c *Controller) {
	log.Warn("tray: no notification area on this platform")
	<-c.Done()
}
