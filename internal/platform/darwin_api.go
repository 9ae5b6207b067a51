//go:build darwin

package platform

import (
	"os"
	"path/filepath"
)

type darwinDirs struct{}

func newOSDirs() osDirs {
	return darwinDirs{}
}

func (darwinDirs) userDataDir(appName string) (string, error) {
	return homeSubdir("Library", "Application Support", appName)
}

// resourcesDir is Contents/Resources inside an .app bundle, otherwise the
// binary's directory
func (darwinDirs) resourcesDir(exeDir string) (string, error) {
	bundle := filepath.Join(exeDir, "..", "Resources")
	if info, err := os.Stat(bundle); err == nil && info.IsDir() {
		return filepath.Clean(bundle), nil
	}
	return exeDir, nil
}
