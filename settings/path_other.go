//go:build !windows

package settings

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DefaultPath is settings.json under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = homedir.Dir()
		if err != nil {
			dir = "."
		}
	}
	return filepath.Join(dir, appDirName, fileName)
}
