package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path    string // Absolute path on disk.
	RelPath string // Slash-separated path relative to the root directory.
	Size    int64  // File size in bytes.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir    string   // Root directory to walk.
	Extensions []string // Suffixes a file name must end with (empty = all files).
	Exclude    []string // Glob patterns; matching files and directories are skipped.
	// ExcludeBase is the directory Exclude patterns are relative to. It
	// defaults to RootDir and must contain it.
	ExcludeBase string
}

// Walk traverses the directory tree rooted at config.RootDir depth-first and
// returns every file whose name ends with one of the configured extensions.
// Symbolic links are followed: a link to a file is reported under the link's
// path and a link to a directory is descended into. Each directory is
// visited once, so link cycles terminate. Any error reading the tree,
// including a dangling link, aborts the walk.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	base := root
	if config.ExcludeBase != "" {
		if base, err = filepath.Abs(config.ExcludeBase); err != nil {
			return nil, fmt.Errorf("walker: resolve exclude base: %w", err)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	w := &walk{config: config, root: root, base: base, visited: make(map[string]bool)}
	if err := w.dir(root); err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	return w.files, nil
}

type walk struct {
	config  WalkerConfig
	root    string
	base    string
	visited map[string]bool
	files   []FileInfo
}

func (w *walk) dir(dir string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if w.visited[resolved] {
		return nil
	}
	w.visited[resolved] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		excludeRel, err := filepath.Rel(w.base, path)
		if err != nil {
			return err
		}
		if MatchesExclude(excludeRel, w.config.Exclude) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			if info, err = os.Stat(path); err != nil {
				return err
			}
		}

		if info.IsDir() {
			if err := w.dir(path); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() || !HasExtension(entry.Name(), w.config.Extensions) {
			continue
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		w.files = append(w.files, FileInfo{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			Size:    info.Size(),
		})
	}
	return nil
}

// HasExtension reports whether name ends with any of the given suffixes.
// An empty suffix list matches every name.
func HasExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
