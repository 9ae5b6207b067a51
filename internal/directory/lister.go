// Package directory enumerates and watches directory trees for list-directory.
package directory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "namedesk/internal/infrastructure/errors"
)

// DefaultIgnore is the metadata file excluded from every listing
const DefaultIgnore = ".DS_Store"

// Lister walks a root recursively and returns relative paths
type Lister struct {
	ignore []string
}

// NewLister creates a lister that drops any entry whose relative path
// contains one of ignore. An empty ignore list means DefaultIgnore.
func NewLister(ignore []string) *Lister {
	patterns := make([]string, 0, len(ignore))
	for _, p := range ignore {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		patterns = []string{DefaultIgnore}
	}
	return &Lister{ignore: patterns}
}

// Ignored reports whether rel matches an ignore pattern
func (l *Lister) Ignored(rel string) bool {
	for _, p := range l.ignore {
		if strings.Contains(rel, p) {
			return true
		}
	}
	return false
}

// List returns every file and directory below root, in lexical walk order,
// as paths relative to root. The root itself is not included.
func (l *Lister) List(ctx context.Context, root string) ([]string, error) {
	const op = "ListDirectory"
	errContext := map[string]string{"path": root}

	if strings.TrimSpace(root) == "" {
		return []string{}, apperrors.Validation(op, "path", "must not be empty")
	}

	info, err := os.Stat(root)
	if err != nil {
		return []string{}, apperrors.WrapWithContext(op, err, errContext)
	}
	if !info.IsDir() {
		return []string{}, apperrors.NewWithContext(op,
			fmt.Errorf("not a directory: %s", root), apperrors.ErrCodeFilesystem, errContext)
	}

	entries := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if l.Ignored(rel) {
			return nil
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		return []string{}, apperrors.WrapWithContext(op, err, errContext)
	}
	return entries, nil
}
