//go:build !windows

package prompt

import "weatherwall/log"

type unavailable struct{}

// New returns a Prompter that always reports cancel; there is no dialog
// backend on this platform.
func New() Prompter {
	return unavailable{}
}

func (unavailable) Ask(req Request) (string, bool) {
	log.Warnf("prompt: no dialog backend for %q", req.Title)
	return "", false
}
