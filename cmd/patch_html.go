package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/htmlpatch"
	"github.com/ziadkadry99/docvars/internal/logging"
)

var patchHTMLCmd = &cobra.Command{
	Use:   "patch-html <dir>",
	Short: "Expand variables in already-rendered HTML pages",
	Long: `Rewrites text inside code, article and main elements (and elements with
the "content" class) of every .html/.htm file under dir, the same way the
browser script does at display time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logging.LogDuration(time.Now(), "patch-html")

		_, table, err := loadTable(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		stats, err := htmlpatch.New(table, logging.GetLogger("patch-html")).PatchDir(ctx, args[0])
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Patched %d of %d pages (%d replacements)", stats.Changed, stats.Scanned, stats.Replacements)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patchHTMLCmd)
}
