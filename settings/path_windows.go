//go:build windows

package settings

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DefaultPath is %APPDATA%\WeatherWallpaper\settings.json.
func DefaultPath() string {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		home, err := homedir.Dir()
		if err != nil {
			home = "."
		}
		appData = filepath.Join(home, "AppData", "Roaming")
	}
	return filepath.Join(appData, appDirName, fileName)
}
