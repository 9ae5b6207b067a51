package database

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	dberrors "namedesk/internal/infrastructure/errors"
	"namedesk/internal/infrastructure/logging"
)

// Location is the resolved database file
type Location struct {
	Path string
	// Seeded is true when the bundled seed was copied to Path during resolution
	Seeded bool
}

// ResolveLocation decides where the database file lives.
//
// In-memory and absolute paths are returned unchanged. Development and test
// resolve a relative Path against the working directory. Production resolves
// it under the per-user data directory and, when the file does not exist yet,
// copies SeedFile from the resources directory there. An existing file is
// never overwritten.
func ResolveLocation(config *Config, dirs DataDirs, logger logging.Logger) (Location, error) {
	const op = "ResolveLocation"
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if config == nil {
		return Location{}, dberrors.Validation(op, "config", "must not be nil")
	}
	if config.IsInMemory() {
		return Location{Path: config.Path}, nil
	}

	if filepath.IsAbs(config.Path) {
		if err := ensureParentDir(config.Path); err != nil {
			return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"path": config.Path})
		}
		return Location{Path: config.Path}, nil
	}

	if !config.IsProduction() {
		abs, err := filepath.Abs(config.Path)
		if err != nil {
			return Location{}, dberrors.Wrap(op, err)
		}
		if err := ensureParentDir(abs); err != nil {
			return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"path": abs})
		}
		return Location{Path: abs}, nil
	}

	if dirs == nil {
		return Location{}, dberrors.Validation(op, "dirs", "required in production")
	}
	dataDir, err := dirs.UserDataDir()
	if err != nil {
		return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"phase": "user_data_dir"})
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"path": dataDir})
	}

	target := filepath.Join(dataDir, config.Path)
	if err := ensureParentDir(target); err != nil {
		return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"path": target})
	}

	loc := Location{Path: target}
	if _, err := os.Stat(target); err == nil {
		return loc, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"path": target})
	}

	if config.SeedFile == "" {
		return loc, nil
	}

	resources, err := dirs.ResourcesDir()
	if err != nil {
		return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"phase": "resources_dir"})
	}
	seed := filepath.Join(resources, config.SeedFile)
	if _, err := os.Stat(seed); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Seed database not found, starting empty", "seed", seed)
		return loc, nil
	} else if err != nil {
		return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"seed": seed})
	}

	if err := copyFile(seed, target); err != nil {
		return Location{}, dberrors.WrapWithContext(op, err, map[string]string{"seed": seed, "path": target})
	}
	logger.Info("Seeded database from bundled resources", "seed", seed, "path", target)
	loc.Seeded = true
	return loc, nil
}

func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// copyFile writes src to a temporary file beside dst and renames it into place
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".seed-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy seed: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
