// Package build runs the full documentation pipeline: copy the project into
// a build directory, expand tokens in its content, emit the browser script
// and hand the result to the external generator.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/docvars/internal/generator"
	"github.com/ziadkadry99/docvars/internal/preprocess"
	"github.com/ziadkadry99/docvars/internal/progress"
	"github.com/ziadkadry99/docvars/internal/script"
	"github.com/ziadkadry99/docvars/internal/tree"
	"github.com/ziadkadry99/docvars/internal/vars"
)

// Options configures a Builder.
type Options struct {
	ProjectDir string
	// BuildDir may be relative to ProjectDir. It is removed and recreated on
	// every run.
	BuildDir     string
	ContentRoots []string
	Extensions   []string
	// Exclude patterns are relative to ProjectDir, which the build
	// directory mirrors.
	Exclude []string

	// Command is the generator argv, run with BuildDir as its working
	// directory. Ignored when SkipGenerate is set.
	Command      []string
	SkipGenerate bool

	// ScriptPath, relative to BuildDir, enables browser script output.
	ScriptPath    string
	ScriptOptions script.Options

	// Clean removes BuildDir after a successful run.
	Clean bool

	Runner   generator.Runner
	Reporter progress.Reporter
	Logger   zerolog.Logger
}

// Result describes a completed build.
type Result struct {
	RunID        string
	BuildDir     string
	FilesCopied  int
	FilesScanned int
	FilesChanged int
	Replacements int
	ScriptPath   string
	Generated    bool
	Duration     time.Duration
}

// Builder runs the pipeline for one table.
type Builder struct {
	table *vars.Table
	opts  Options
}

// New returns a Builder. A nil Runner runs the generator as a subprocess
// with inherited stdio.
func New(table *vars.Table, opts Options) *Builder {
	if opts.Runner == nil {
		opts.Runner = &generator.ExecRunner{}
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Discard{}
	}
	if len(opts.Command) == 0 {
		opts.Command, _ = generator.ParseCommand(generator.DefaultCommand)
	}
	return &Builder{table: table, opts: opts}
}

// Run executes the pipeline. The process working directory is never
// changed; every step receives explicit paths.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.New().String()}
	logger := b.opts.Logger.With().Str("run_id", res.RunID).Logger()

	project, err := filepath.Abs(b.opts.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project dir: %w", err)
	}
	buildDir := b.opts.BuildDir
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(project, buildDir)
	}
	buildDir = filepath.Clean(buildDir)
	if rel, err := filepath.Rel(buildDir, project); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// Removing buildDir would take the project with it.
		return nil, fmt.Errorf("build dir %s must not contain the project dir %s", buildDir, project)
	}
	res.BuildDir = buildDir

	logger.Info().Str("project", project).Str("build_dir", buildDir).Msg("Starting build")

	if err := os.RemoveAll(buildDir); err != nil {
		return nil, fmt.Errorf("removing old build dir %s: %w", buildDir, err)
	}

	stats, err := tree.Copy(project, buildDir, tree.Options{})
	if err != nil {
		return nil, fmt.Errorf("copying project: %w", err)
	}
	res.FilesCopied = stats.Files
	logger.Debug().Int("files", stats.Files).Int("dirs", stats.Dirs).Int64("bytes", stats.Bytes).Msg("Copied project")

	proc := preprocess.New(b.table, preprocess.Options{
		Extensions: b.opts.Extensions,
		Exclude:    b.opts.Exclude,
		BaseDir:    buildDir,
		Reporter:   b.opts.Reporter,
		Logger:     logger,
	})
	var total preprocess.Stats
	for _, root := range b.opts.ContentRoots {
		dir := filepath.Join(buildDir, root)
		info, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("root", root).Msg("Content root not present, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			logger.Warn().Str("root", root).Msg("Content root is not a directory, skipping")
			continue
		}

		s, err := proc.ProcessDir(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("processing %s: %w", root, err)
		}
		total.Add(s)
	}
	res.FilesScanned, res.FilesChanged, res.Replacements = total.Scanned, total.Changed, total.Replacements

	if b.opts.ScriptPath != "" {
		path := filepath.Join(buildDir, b.opts.ScriptPath)
		if err := script.WriteFile(path, b.table, b.opts.ScriptOptions); err != nil {
			return nil, err
		}
		res.ScriptPath = path
		logger.Info().Str("path", b.opts.ScriptPath).Msg("Wrote browser script")
	}

	if !b.opts.SkipGenerate {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info().Strs("command", b.opts.Command).Msg("Running generator")
		if err := b.opts.Runner.Run(ctx, buildDir, b.opts.Command); err != nil {
			return nil, err
		}
		res.Generated = true
	}

	if b.opts.Clean {
		if err := os.RemoveAll(buildDir); err != nil {
			return nil, fmt.Errorf("cleaning build dir %s: %w", buildDir, err)
		}
		logger.Debug().Msg("Removed build dir")
	}

	res.Duration = time.Since(start)
	logger.Info().Dur("duration", res.Duration).Int("changed", res.FilesChanged).Msg("Build complete")
	return res, nil
}
