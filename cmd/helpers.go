package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/config"
	"github.com/ziadkadry99/docvars/internal/vars"
)

// loadConfig loads and validates the config, layering the command's flags
// and --var overrides on top of the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	overrides, err := config.ParseVars(varFlags)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile, cmd.Flags(), overrides)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docvars init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// loadTable loads the config and builds its replacement table.
func loadTable(cmd *cobra.Command) (*config.Config, *vars.Table, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	table, err := cfg.Table()
	if err != nil {
		return nil, nil, err
	}
	return cfg, table, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
