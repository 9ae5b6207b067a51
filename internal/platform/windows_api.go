//go:build windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

type windowsDirs struct{}

func newOSDirs() osDirs {
	return windowsDirs{}
}

// userDataDir is %APPDATA%\<app>, looked up through the known-folder API
func (windowsDirs) userDataDir(appName string) (string, error) {
	base, err := windows.KnownFolderPath(windows.FOLDERID_RoamingAppData, windows.KF_FLAG_DEFAULT)
	if err != nil {
		if env := os.Getenv("APPDATA"); env != "" {
			return filepath.Join(env, appName), nil
		}
		return "", fmt.Errorf("platform: roaming app data: %w", err)
	}
	return filepath.Join(base, appName), nil
}

func (windowsDirs) resourcesDir(exeDir string) (string, error) {
	bundle := filepath.Join(exeDir, "resources")
	if info, err := os.Stat(bundle); err == nil && info.IsDir() {
		return bundle, nil
	}
	return exeDir, nil
}
