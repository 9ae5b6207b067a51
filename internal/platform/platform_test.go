package platform

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestUserDataDirEndsWithAppName(t *testing.T) {
	dirs := NewDirs("namedesk-test")
	dir, err := dirs.UserDataDir()
	if err != nil {
		t.Fatalf("UserDataDir: %v", err)
	}
	if filepath.Base(dir) != "namedesk-test" {
		t.Errorf("UserDataDir = %q, want it to end with the app name", dir)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("UserDataDir = %q, want absolute", dir)
	}
}

func TestUserDataDirRequiresName(t *testing.T) {
	if _, err := NewDirs("  ").UserDataDir(); err == nil || !strings.Contains(err.Error(), "application name") {
		t.Errorf("got %v", err)
	}
}

func TestResourcesDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ResourcesEnv, dir)

	got, err := NewDirs("x").ResourcesDir()
	if err != nil {
		t.Fatalf("ResourcesDir: %v", err)
	}
	if got != dir {
		t.Errorf("ResourcesDir = %q, want %q", got, dir)
	}
}

func TestResourcesDirDefaultsNearExecutable(t *testing.T) {
	t.Setenv(ResourcesEnv, "")
	got, err := NewDirs("x").ResourcesDir()
	if err != nil {
		t.Fatalf("ResourcesDir: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ResourcesDir = %q, want absolute", got)
	}
}
