package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	dberrors "namedesk/internal/infrastructure/errors"
)

type stubDirs struct {
	data, resources string
	err             error
}

func (s stubDirs) UserDataDir() (string, error)  { return s.data, s.err }
func (s stubDirs) ResourcesDir() (string, error) { return s.resources, s.err }

func TestResolveLocationInMemory(t *testing.T) {
	t.Parallel()

	loc, err := ResolveLocation(TestConfig(), nil, nil)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}
	if loc.Path != MemoryPath || loc.Seeded {
		t.Errorf("got %+v", loc)
	}
}

func TestResolveLocationAbsolute(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "x.db")
	cfg := DefaultConfig()
	cfg.Path = path

	loc, err := ResolveLocation(cfg, nil, nil)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}
	if loc.Path != path {
		t.Errorf("Path = %q, want %q", loc.Path, path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}

func TestResolveLocationDevelopmentUsesWorkingDirectory(t *testing.T) {
	t.Parallel()

	cfg := DevelopmentConfig()
	loc, err := ResolveLocation(cfg, nil, nil)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}
	wd, _ := os.Getwd()
	if want := filepath.Join(wd, "namedesk.db"); loc.Path != want {
		t.Errorf("Path = %q, want %q", loc.Path, want)
	}
}

func TestResolveLocationProductionSeedsOnce(t *testing.T) {
	t.Parallel()

	data := filepath.Join(t.TempDir(), "data")
	resources := t.TempDir()
	if err := os.WriteFile(filepath.Join(resources, "namedesk.db"), []byte("seed-v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	dirs := stubDirs{data: data, resources: resources}

	loc, err := ResolveLocation(DefaultConfig(), dirs, nil)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}
	if !loc.Seeded {
		t.Error("first resolution should seed")
	}
	if want := filepath.Join(data, "namedesk.db"); loc.Path != want {
		t.Errorf("Path = %q, want %q", loc.Path, want)
	}

	// Local modifications survive a new seed on the next start.
	if err := os.WriteFile(loc.Path, []byte("user-data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(resources, "namedesk.db"), []byte("seed-v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	loc, err = ResolveLocation(DefaultConfig(), dirs, nil)
	if err != nil {
		t.Fatalf("second ResolveLocation: %v", err)
	}
	if loc.Seeded {
		t.Error("second resolution must not seed")
	}
	got, _ := os.ReadFile(loc.Path)
	if string(got) != "user-data" {
		t.Errorf("existing database overwritten: %q", got)
	}
}

func TestResolveLocationProductionMissingSeed(t *testing.T) {
	t.Parallel()

	dirs := stubDirs{data: t.TempDir(), resources: t.TempDir()}
	loc, err := ResolveLocation(DefaultConfig(), dirs, nil)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}
	if loc.Seeded {
		t.Error("nothing to seed from")
	}
	if _, err := os.Stat(loc.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no file should be created, stat err = %v", err)
	}
}

func TestResolveLocationProductionErrors(t *testing.T) {
	t.Parallel()

	if _, err := ResolveLocation(DefaultConfig(), nil, nil); !dberrors.IsValidation(err) {
		t.Errorf("nil dirs: got %v, want validation error", err)
	}

	boom := errors.New("no home")
	_, err := ResolveLocation(DefaultConfig(), stubDirs{err: boom}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("dir failure should be wrapped, got %v", err)
	}
}
