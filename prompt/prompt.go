// Package prompt asks the user for a line of text in a modal dialog. Ask
// blocks the calling goroutine until the dialog closes; the dialog runs on
// its own OS thread so neither the tray nor the surface thread is involved.
package prompt

import "strings"

// Request describes one dialog.
type Request struct {
	Title   string
	Message string
	Initial string
}

// Prompter shows a dialog and returns the entered text. ok is false when the
// user cancelled or the dialog could not be shown.
type Prompter interface {
	Ask(req Request) (text string, ok bool)
}

// Func adapts a function to Prompter.
type Func func(Request) (string, bool)

func (f Func) Ask(req Request) (string, bool) { return f(req) }

// AskTrimmed returns the trimmed answer, treating blank input as cancel.
func AskTrimmed(p Prompter, req Request) (string, bool) {
	text, ok := p.Ask(req)
	if !ok {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}
