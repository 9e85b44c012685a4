package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/vars"
)

var expandCmd = &cobra.Command{
	Use:   "expand [file]",
	Short: "Expand variables in a file or stdin and print the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExpand,
}

func init() {
	expandCmd.Flags().Bool("strict", false, "fail if any {{NAME}} token has no value")
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	_, table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	out := table.Expand(string(data))

	strict, _ := cmd.Flags().GetBool("strict")
	if strict {
		if unknown := undefinedTokens(table, string(data)); len(unknown) > 0 {
			return fmt.Errorf("undefined variables: %s", strings.Join(unknown, ", "))
		}
	}

	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

// undefinedTokens lists, once each, the token names in s that table does not
// define.
func undefinedTokens(table *vars.Table, s string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range vars.Tokens(s) {
		if _, ok := table.Lookup(name); ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
