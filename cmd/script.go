package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/script"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Render the in-browser replacement script from the models table",
	Long: `Renders the JavaScript that expands {{NAME}} tokens in rendered pages,
using the same table as build. Prints to stdout unless --output is given.`,
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().StringP("output", "o", "", "write the script to this file")
	scriptCmd.Flags().Bool("minify", false, "minify with esbuild (default from config)")
	scriptCmd.Flags().Int("delay", 0, "re-scan delay after client-side navigation, in ms (default from config)")
	rootCmd.AddCommand(scriptCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	opts := script.Options{
		Delay:  time.Duration(cfg.Script.DelayMS) * time.Millisecond,
		Minify: cfg.Script.Minify,
	}

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := script.WriteFile(output, table, opts); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Wrote %s (%d variables)", output, table.Len())
		return nil
	}

	src, err := script.Render(table, opts)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(src)
	return err
}
