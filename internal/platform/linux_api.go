//go:build !windows && !darwin

package platform

import (
	"os"
	"path/filepath"
)

type linuxDirs struct{}

func newOSDirs() osDirs {
	return linuxDirs{}
}

// userDataDir follows the XDG base directory layout
func (linuxDirs) userDataDir(appName string) (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" && filepath.IsAbs(base) {
		return filepath.Join(base, appName), nil
	}
	return homeSubdir(".config", appName)
}

// resourcesDir is the resources/ folder next to the binary when present
func (linuxDirs) resourcesDir(exeDir string) (string, error) {
	return bundledOr(filepath.Join(exeDir, "resources"), exeDir), nil
}

func bundledOr(preferred, fallback string) string {
	if info, err := os.Stat(preferred); err == nil && info.IsDir() {
		return preferred
	}
	return fallback
}
