//go:build windows

package surface

import (
	"os"

	"github.com/jchv/go-webview2"

	"weatherwall/desktop"
)

const windowTitle = "Weather Wallpaper"

type webView struct {
	webview2.WebView
}

func (w webView) Handle() desktop.HWND {
	return desktop.HWND(w.Window())
}

// NewWebView creates a WebView2 window of the given size. dataDir holds the
// browser profile (localStorage lives there).
func NewWebView(dataDir string) Factory {
	return func(width, height int32) View {
		if dataDir != "" {
			_ = os.MkdirAll(dataDir, 0o755)
		}
		w := webview2.NewWithOptions(webview2.WebViewOptions{
			DataPath: dataDir,
			WindowOptions: webview2.WindowOptions{
				Title:  windowTitle,
				Width:  uint(width),
				Height: uint(height),
			},
		})
		if w == nil {
			return nil
		}
		return webView{w}
	}
}
