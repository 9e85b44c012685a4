package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a docvars configuration file",
	Long: `Runs an interactive wizard to configure docvars for your docs project and
writes the result to the config file (.docvars.yml by default). With
--defaults the wizard is skipped and the default table is written.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("defaults", false, "write the default configuration without prompting")
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(cfgFile); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	useDefaults, _ := cmd.Flags().GetBool("defaults")
	if !useDefaults {
		_, err := config.RunWizard(cfgFile)
		return err
	}

	cfg := config.DefaultConfig()
	if roots, _ := config.DetectContentRoots(cfg.ProjectPath()); len(roots) > 0 {
		cfg.ContentRoots = roots
	}
	if err := cfg.Save(cfgFile); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Configuration saved to %s", cfgFile)
	return nil
}
