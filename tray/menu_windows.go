//go:build windows

package tray

import (
	"runtime"
	"strings"

	"github.com/energye/systray"
)

// Run shows the icon and blocks in the tray's event loop until Quit. The
// loop's hidden window and its message pump must share one OS thread, so the
// calling goroutine is locked for the duration.
func Run(c *Controller) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	c.SetStopLoop(systray.Quit)
	systray.Run(func() { onReady(c) }, func() {})
}

func onReady(c *Controller) {
	systray.SetIcon(iconICO)
	systray.SetTitle(AppTitle)
	systray.SetTooltip(Tooltip)
	systray.SetOnClick(func(menu systray.IMenu) { menu.ShowMenu() })
	systray.SetOnRClick(func(menu systray.IMenu) { menu.ShowMenu() })

	items := c.Items()
	entries := make(map[Action]*systray.MenuItem, len(items))
	for _, it := range items {
		if it.Separator {
			systray.AddSeparator()
		}
		var m *systray.MenuItem
		if it.Checkable {
			m = systray.AddMenuItemCheckbox(menuTitle(it.Title), it.Title, it.Checked)
		} else {
			m = systray.AddMenuItem(menuTitle(it.Title), it.Title)
		}
		entries[it.Action] = m

		a := it.Action
		m.Click(func() {
			c.Invoke(a)
			if a != Quit {
				refreshChecks(c, entries)
			}
		})
	}
}

// refreshChecks re-reads every checkmark from the model.
func refreshChecks(c *Controller, entries map[Action]*systray.MenuItem) {
	for _, it := range c.Items() {
		m, ok := entries[it.Action]
		if !ok || !it.Checkable {
			continue
		}
		if it.Checked {
			m.Check()
		} else {
			m.Uncheck()
		}
	}
}

// menuTitle escapes '&', which Win32 menus treat as a mnemonic marker.
func menuTitle(s string) string {
	return strings.ReplaceAll(s, "&", "&&")
}
