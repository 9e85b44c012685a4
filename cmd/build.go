package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/build"
	"github.com/ziadkadry99/docvars/internal/generator"
	"github.com/ziadkadry99/docvars/internal/logging"
	"github.com/ziadkadry99/docvars/internal/progress"
	"github.com/ziadkadry99/docvars/internal/script"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Copy the project, expand variables and run the docs generator",
	Long: `Copies the project into the build directory, expands {{NAME}} tokens in
every Markdown/MDX file under the content roots (pages and fern by default),
optionally writes the browser script, and runs the docs generator
("fern generate --docs" by default) inside the build directory.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("project-dir", "", "project directory to copy (default from config)")
	buildCmd.Flags().String("build-dir", "", "build directory (default from config)")
	buildCmd.Flags().String("generator", "", "generator command line (default from config)")
	buildCmd.Flags().Bool("skip-generate", false, "expand variables only, do not run the generator")
	buildCmd.Flags().Bool("clean", false, "remove the build directory after a successful build")
	buildCmd.Flags().String("script-output", "", "write the browser script to this path inside the build directory")
	buildCmd.Flags().Bool("minify", false, "minify the browser script")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	var argv []string
	if !cfg.Generator.Skip {
		argv, err = generator.ParseCommand(cfg.Generator.Command)
		if err != nil {
			return err
		}
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	builder := build.New(table, build.Options{
		ProjectDir:   cfg.ProjectPath(),
		BuildDir:     cfg.BuildDir,
		ContentRoots: cfg.ContentRoots,
		Extensions:   cfg.Extensions,
		Exclude:      cfg.Exclude,
		Command:      argv,
		SkipGenerate: cfg.Generator.Skip,
		ScriptPath:   cfg.Script.Output,
		ScriptOptions: script.Options{
			Delay:  time.Duration(cfg.Script.DelayMS) * time.Millisecond,
			Minify: cfg.Script.Minify,
		},
		Clean:    cfg.Clean,
		Reporter: progress.NewReporter(),
		Logger:   logging.GetLogger("build"),
	})

	res, err := builder.Run(ctx)
	if err != nil {
		var exitErr *generator.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("build failed: %w", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Processed variables in %d of %d content files (%d replacements)", res.FilesChanged, res.FilesScanned, res.Replacements)
	if res.ScriptPath != "" {
		printDetail(out, "browser script: %s", res.ScriptPath)
	}
	if res.Generated {
		printSuccess(out, "Build complete in %s", time.Since(start).Round(time.Millisecond))
	} else {
		printSuccess(out, "Build directory ready: %s", res.BuildDir)
	}
	printDetail(out, "run %s", res.RunID)
	return nil
}
