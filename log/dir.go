package log

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const appDirName = "WeatherWallpaper"

// defaultDir is the per-user cache dir (%LOCALAPPDATA% on Windows, so the
// log never roams with the profile), falling back to the home directory.
func defaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		home, herr := homedir.Dir()
		if herr != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, appDirName, "logs"), nil
}
