//go:build !windows

package surface

// NewWebView has no backend off Windows; the factory always fails and Run
// returns ErrNoSurface.
func NewWebView(dataDir string) Factory {
	return func(int32, int32) View { return nil }
}
