//go:build windows

package prompt

import (
	"runtime"

	"github.com/jchv/go-webview2"
)

const dialogWidth = 420

type webviewPrompter struct{}

// New returns the WebView2-backed dialog.
func New() Prompter {
	return webviewPrompter{}
}

// Ask runs the dialog on a dedicated locked OS thread and joins it.
func (webviewPrompter) Ask(req Request) (string, bool) {
	result := make(chan answer, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		result <- runDialog(req, openWebView)
	}()
	a := <-result
	return a.text, a.ok
}

func openWebView(req Request) window {
	w := webview2.NewWithOptions(webview2.WebViewOptions{
		AutoFocus: true,
		WindowOptions: webview2.WindowOptions{
			Title:  req.Title,
			Width:  dialogWidth,
			Height: uint(dialogHeight(req)),
			Center: true,
		},
	})
	if w == nil {
		return nil
	}
	w.SetSize(dialogWidth, dialogHeight(req), webview2.HintFixed)
	return w
}
