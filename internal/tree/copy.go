// Package tree copies directory trees byte for byte.
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cp "github.com/otiai10/copy"

	"github.com/ziadkadry99/docvars/internal/walker"
)

// Options tunes a Copy.
type Options struct {
	// Skip lists paths that are never copied. The destination itself is
	// always skipped.
	Skip []string
	// Exclude holds glob patterns relative to the source root.
	Exclude []string
}

// Stats counts what a Copy wrote.
type Stats struct {
	Files int
	Dirs  int
	Bytes int64
}

// Copy recursively copies src into dst, creating dst and any missing parents.
// Symbolic links are followed and copied as the files or directories they
// point to. Permission bits are kept. The first error stops the copy.
func Copy(src, dst string, opts Options) (Stats, error) {
	var stats Stats

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return stats, fmt.Errorf("resolving %s: %w", src, err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return stats, fmt.Errorf("resolving %s: %w", dst, err)
	}

	info, err := os.Stat(absSrc)
	if err != nil {
		return stats, fmt.Errorf("stat %s: %w", absSrc, err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("%s is not a directory", absSrc)
	}

	// dst is created before src is listed; never descend into it.
	skip := map[string]bool{absDst: true}
	for _, p := range opts.Skip {
		abs, err := filepath.Abs(p)
		if err != nil {
			return stats, fmt.Errorf("resolving %s: %w", p, err)
		}
		skip[abs] = true
	}

	stats.Dirs++
	err = cp.Copy(absSrc, absDst, cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Deep },
		Skip: func(info os.FileInfo, path, _ string) (bool, error) {
			if skip[path] {
				return true, nil
			}
			// Links are counted once, when their target is visited.
			if info.Mode()&os.ModeSymlink != 0 {
				return excluded(absSrc, path, opts.Exclude), nil
			}
			if excluded(absSrc, path, opts.Exclude) {
				return true, nil
			}
			switch {
			case info.IsDir():
				stats.Dirs++
			case info.Mode().IsRegular():
				stats.Files++
				stats.Bytes += info.Size()
			}
			return false, nil
		},
	})
	if err != nil {
		return stats, fmt.Errorf("copying %s to %s: %w", absSrc, absDst, err)
	}
	return stats, nil
}

// excluded matches path against patterns relative to root. Link targets
// outside root are never excluded.
func excluded(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return walker.MatchesExclude(rel, patterns)
}

// CopyFile copies a single file, keeping its permission bits, and returns
// the number of bytes written. An existing dst is truncated.
func CopyFile(src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", src)
	}
	err = cp.Copy(src, dst, cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Deep },
	})
	if err != nil {
		return 0, fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return info.Size(), nil
}
