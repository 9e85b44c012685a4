package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/logging"
	"github.com/ziadkadry99/docvars/internal/preprocess"
	"github.com/ziadkadry99/docvars/internal/progress"
)

var processCmd = &cobra.Command{
	Use:   "process <dir>",
	Short: "Expand variables in place in every content file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringSlice("extensions", nil, "content file suffixes (default from config)")
	processCmd.Flags().StringSlice("exclude", nil, "glob patterns to skip (default from config)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	defer logging.LogDuration(time.Now(), "process")

	cfg, table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	proc := preprocess.New(table, preprocess.Options{
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
		Reporter:   progress.NewReporter(),
		Logger:     logging.GetLogger("process"),
	})
	stats, err := proc.ProcessDir(ctx, args[0])
	if err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "Processed variables in %d of %d files (%d replacements)", stats.Changed, stats.Scanned, stats.Replacements)
	return nil
}
