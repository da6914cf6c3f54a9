package prompt

import "weatherwall/log"

// window is the part of a webview the dialog drives.
type window interface {
	Bind(name string, f any) error
	SetHtml(html string)
	Run()
	Destroy()
}

type answer struct {
	text string
	ok   bool
}

// runDialog shows the page in the window from open and returns the answer
// passed to promptDone. The window is destroyed from inside its own loop so
// it is gone by the time Run returns.
func runDialog(req Request, open func(Request) window) answer {
	page, err := renderPage(req)
	if err != nil {
		log.Errorf("prompt: render %q: %v", req.Title, err)
		return answer{}
	}
	w := open(req)
	if w == nil {
		log.Error("prompt: WebView2 unavailable")
		return answer{}
	}

	var a answer
	if err := w.Bind("promptDone", func(ok bool, text string) {
		a = answer{text: text, ok: ok}
		w.Destroy()
	}); err != nil {
		log.Errorf("prompt: bind: %v", err)
		// Destroy only posts WM_CLOSE; pump until the window is gone.
		w.Destroy()
		w.Run()
		return answer{}
	}
	w.SetHtml(page)
	w.Run()
	return a
}
