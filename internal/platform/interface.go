// Package platform locates per-user and bundled-resource directories.
package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DirsAPI is implemented per operating system
type DirsAPI interface {
	// UserDataDir is the per-user application data directory
	UserDataDir() (string, error)
	// ResourcesDir holds files shipped with the packaged application
	ResourcesDir() (string, error)
}

// ResourcesEnv overrides the resources directory
const ResourcesEnv = "NAMEDESK_RESOURCES_DIR"

// Dirs resolves directories for a named application
type Dirs struct {
	AppName string
	api     osDirs
}

// osDirs is the per-OS lookup with the application name already applied
type osDirs interface {
	userDataDir(appName string) (string, error)
	resourcesDir(exeDir string) (string, error)
}

var _ DirsAPI = (*Dirs)(nil)

// NewDirs returns the directories for appName on the current platform
func NewDirs(appName string) *Dirs {
	return &Dirs{AppName: appName, api: newOSDirs()}
}

// UserDataDir returns the per-user directory for the application
func (d *Dirs) UserDataDir() (string, error) {
	name := strings.TrimSpace(d.AppName)
	if name == "" {
		return "", errors.New("platform: application name is empty")
	}
	return d.api.userDataDir(name)
}

// ResourcesDir returns the bundled resources directory, honouring ResourcesEnv
func (d *Dirs) ResourcesDir() (string, error) {
	if dir := os.Getenv(ResourcesEnv); dir != "" {
		return filepath.Abs(dir)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return d.api.resourcesDir(filepath.Dir(exe))
}

func homeSubdir(parts ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, parts...)...), nil
}
