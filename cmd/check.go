package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/config"
	"github.com/ziadkadry99/docvars/internal/script"
)

var checkCmd = &cobra.Command{
	Use:   "check [script]",
	Short: "Compare a browser script's MODELS table with the configured table",
	Long: `Reads the MODELS = {...} table of a browser script (fern/models.js in the
project by default) and reports every variable that is missing, extra or has
a different value. Exits non-zero when the two tables drift apart.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.ProjectPath(), config.DefaultScriptPath)
	if cfg.Script.Output != "" {
		path = filepath.Join(cfg.ProjectPath(), cfg.Script.Output)
	}
	if len(args) == 1 {
		path = args[0]
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	found, err := script.ExtractTable(src)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	drifts := script.Diff(table, found)
	if len(drifts) == 0 {
		printSuccess(out, "%s matches the models table (%d variables)", path, table.Len())
		return nil
	}

	printWarn(out, "%s differs from the models table:", path)
	for _, d := range drifts {
		printDetail(out, "%s", d)
	}
	return fmt.Errorf("%d variable(s) out of sync in %s", len(drifts), path)
}
