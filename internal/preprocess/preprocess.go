// Package preprocess expands {{NAME}} tokens in content files in place.
package preprocess

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ziadkadry99/docvars/internal/progress"
	"github.com/ziadkadry99/docvars/internal/vars"
	"github.com/ziadkadry99/docvars/internal/walker"
)

// DefaultExtensions are the content file suffixes processed when none are
// configured.
var DefaultExtensions = []string{".md", ".mdx"}

// Options configures a Processor.
type Options struct {
	Extensions []string
	Exclude    []string
	// BaseDir is the directory Exclude patterns and logged paths are
	// relative to, typically the project or build directory holding the
	// content roots. Empty means the root passed to ProcessDir.
	BaseDir  string
	Reporter progress.Reporter
	Logger   zerolog.Logger
}

// Stats summarizes a ProcessDir run.
type Stats struct {
	Scanned      int // files matching the suffix filter
	Changed      int // files rewritten
	Replacements int // tokens replaced across all files
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Scanned += other.Scanned
	s.Changed += other.Changed
	s.Replacements += other.Replacements
}

// Processor rewrites content files using a replacement table.
type Processor struct {
	table    *vars.Table
	exts     []string
	exclude  []string
	baseDir  string
	reporter progress.Reporter
	logger   zerolog.Logger
}

// New creates a Processor. Zero-valued options fall back to
// DefaultExtensions, a silent reporter and a disabled logger.
func New(table *vars.Table, opts Options) *Processor {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Discard{}
	}
	return &Processor{
		table:    table,
		exts:     exts,
		exclude:  opts.Exclude,
		baseDir:  opts.BaseDir,
		reporter: reporter,
		logger:   opts.Logger,
	}
}

// Matches reports whether path is a content file this processor rewrites.
func (p *Processor) Matches(path string) bool {
	return walker.HasExtension(filepath.Base(path), p.exts)
}

// ProcessDir walks root depth-first and expands every matching file. Files
// whose content does not change are not written. The first error aborts.
func (p *Processor) ProcessDir(ctx context.Context, root string) (Stats, error) {
	var stats Stats

	base := p.baseDir
	if base == "" {
		base = root
	}
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     root,
		Extensions:  p.exts,
		Exclude:     p.exclude,
		ExcludeBase: base,
	})
	if err != nil {
		return stats, err
	}

	label := displayPath(base, root)
	if label == "." {
		label = filepath.Base(root)
	}
	p.reporter.Start(label, len(files))
	defer p.reporter.Finish()

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		changed, n, err := p.ProcessFile(f.Path)
		if err != nil {
			return stats, err
		}

		stats.Scanned++
		stats.Replacements += n
		rel := displayPath(base, f.Path)
		if changed {
			stats.Changed++
			p.logger.Info().Int("replacements", n).Msgf("Processed variables in: %s", rel)
		}
		p.reporter.File(i+1, rel, changed)
	}

	p.logger.Debug().
		Str("root", label).
		Int("scanned", stats.Scanned).
		Int("changed", stats.Changed).
		Msg("content root processed")

	return stats, nil
}

// displayPath returns path relative to base with forward slashes, or path
// itself when it is not below base.
func displayPath(base, path string) string {
	absBase, err1 := filepath.Abs(base)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ProcessFile expands tokens in a single file and rewrites it only if the
// content changed. The file's permission bits are kept.
func (p *Processor) ProcessFile(path string) (changed bool, replacements int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(data)
	out, n := p.table.ExpandCount(content)
	if out == content {
		return false, n, nil
	}

	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, n, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, n, nil
}
