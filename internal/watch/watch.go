// Package watch keeps a build directory's content files in step with the
// project while it is being edited.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/docvars/internal/preprocess"
	"github.com/ziadkadry99/docvars/internal/tree"
	"github.com/ziadkadry99/docvars/internal/vars"
	"github.com/ziadkadry99/docvars/internal/walker"
)

// DefaultDebounce is the quiet period after the last event before changed
// files are synced.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	ProjectDir string
	BuildDir   string
	// Roots are content directories relative to ProjectDir. Missing roots
	// are ignored.
	Roots      []string
	Extensions []string
	Exclude    []string
	Debounce   time.Duration
	Logger     zerolog.Logger
}

// Watcher mirrors edits to content files into the build directory and
// expands tokens in the copies.
type Watcher struct {
	opts   Options
	proc   *preprocess.Processor
	logger zerolog.Logger
	ready  chan struct{}

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
	// flushing counts syncs in progress; stop waits for them.
	flushing sync.WaitGroup
}

// New returns a Watcher. Paths in opts are made absolute.
func New(table *vars.Table, opts Options) (*Watcher, error) {
	project, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project dir: %w", err)
	}
	build, err := filepath.Abs(opts.BuildDir)
	if err != nil {
		return nil, fmt.Errorf("resolving build dir: %w", err)
	}
	opts.ProjectDir, opts.BuildDir = project, build
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	return &Watcher{
		opts: opts,
		proc: preprocess.New(table, preprocess.Options{
			Extensions: opts.Extensions,
			Exclude:    opts.Exclude,
			Logger:     opts.Logger,
		}),
		logger:  opts.Logger,
		ready:   make(chan struct{}),
		pending: make(map[string]struct{}),
	}, nil
}

// Ready is closed once Run has registered every watched directory.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the content roots until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	watched := 0
	for _, root := range w.opts.Roots {
		dir := filepath.Join(w.opts.ProjectDir, root)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			w.logger.Debug().Str("root", root).Msg("Content root not found, not watching")
			continue
		}
		if err := w.watchDir(fsw, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no content roots to watch under %s", w.opts.ProjectDir)
	}
	close(w.ready)

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// watchDir recursively adds a directory to the watcher, skipping hidden
// directories and the build directory.
func (w *Watcher) watchDir(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (d.Name()[0] == '.' || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if path == w.opts.BuildDir {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchDir(fsw, event.Name); err != nil {
				w.logger.Warn().Err(err).Str("dir", event.Name).Msg("Could not watch new directory")
			}
			return
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.flush)
}

func (w *Watcher) relevant(path string) bool {
	if !w.proc.Matches(path) {
		return false
	}
	rel, err := filepath.Rel(w.opts.ProjectDir, path)
	if err != nil {
		return false
	}
	return !walker.PathExcluded(rel, w.opts.Exclude)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.flushing.Add(1)
	defer w.flushing.Done()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	for _, p := range paths {
		if err := w.Sync(p); err != nil {
			w.logger.Error().Err(err).Str("file", p).Msg("Sync failed")
		}
	}
}

// stop cancels a pending flush and waits for one already running, so
// nothing is written to the build directory once Run has returned.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.flushing.Wait()
}

// Sync brings the build copy of the project file at path up to date: an
// existing file is re-copied and expanded, a missing one has its copy removed.
func (w *Watcher) Sync(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	rel, err := filepath.Rel(w.opts.ProjectDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s is outside the project directory", path)
	}
	dst := filepath.Join(w.opts.BuildDir, rel)

	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
		if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", dst, err)
		}
		w.logger.Info().Str("file", filepath.ToSlash(rel)).Msg("Removed build copy")
		return nil
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", abs, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if _, err := tree.CopyFile(abs, dst); err != nil {
		return err
	}
	_, n, err := w.proc.ProcessFile(dst)
	if err != nil {
		return err
	}
	w.logger.Info().Str("file", filepath.ToSlash(rel)).Int("replacements", n).Msg("Synced")
	return nil
}
