package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/config"
	"github.com/ziadkadry99/docvars/internal/logging"
)

var (
	cfgFile   string
	verbosity int
	varFlags  []string
)

var rootCmd = &cobra.Command{
	Use:   "docvars",
	Short: "Substitute {{VARIABLES}} in documentation sources and build the docs",
	Long: `docvars keeps model names and other values used across a documentation
site in one table. It expands {{NAME}} tokens in Markdown/MDX sources before
the docs generator runs, and emits a browser script that applies the same
table to rendered pages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupLogger(verbosity)
	},
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringArrayVar(&varFlags, "var", nil, "override a variable, NAME=value (repeatable)")
}
