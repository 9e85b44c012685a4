package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/build"
	"github.com/ziadkadry99/docvars/internal/logging"
	"github.com/ziadkadry99/docvars/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the build directory's content in sync while you edit",
	Long: `Prepares the build directory (copy and expand, without running the
generator) and then watches the content roots. Every saved Markdown/MDX file
is copied into the build directory again and expanded; deleted files are
removed from it. Run the generator's own dev server against the build
directory alongside.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("project-dir", "", "project directory to watch (default from config)")
	watchCmd.Flags().String("build-dir", "", "build directory (default from config)")
	watchCmd.Flags().Int("debounce", 0, "quiet period before syncing, in ms (default from config)")
	watchCmd.Flags().Bool("no-prepare", false, "do not prepare the build directory first")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	logger := logging.GetLogger("watch")
	out := cmd.OutOrStdout()

	noPrepare, _ := cmd.Flags().GetBool("no-prepare")
	if !noPrepare {
		res, err := build.New(table, build.Options{
			ProjectDir:   cfg.ProjectPath(),
			BuildDir:     cfg.BuildDir,
			ContentRoots: cfg.ContentRoots,
			Extensions:   cfg.Extensions,
			Exclude:      cfg.Exclude,
			SkipGenerate: true,
			Logger:       logger,
		}).Run(ctx)
		if err != nil {
			return err
		}
		printSuccess(out, "Build directory ready: %s", res.BuildDir)
	}

	w, err := watch.New(table, watch.Options{
		ProjectDir: cfg.ProjectPath(),
		BuildDir:   cfg.BuildPath(),
		Roots:      cfg.ContentRoots,
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
		Debounce:   time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-w.Ready():
			printSuccess(out, "Watching %v for changes (Ctrl+C to stop)", cfg.ContentRoots)
		case <-ctx.Done():
		}
	}()
	return w.Run(ctx)
}
