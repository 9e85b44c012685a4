package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/tree"
)

var copyCmd = &cobra.Command{
	Use:   "copy <src> <dst>",
	Short: "Copy a directory tree byte for byte",
	Long: `Recursively copies src into dst. Symbolic links are followed and empty
directories are reproduced. A dst inside src is never copied into itself.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetStringSlice("skip")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")

		stats, err := tree.Copy(args[0], args[1], tree.Options{Skip: skip, Exclude: exclude})
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Copied %d files in %d directories (%d bytes)", stats.Files, stats.Dirs, stats.Bytes)
		return nil
	},
}

func init() {
	copyCmd.Flags().StringSlice("skip", nil, "paths never copied")
	copyCmd.Flags().StringSlice("exclude", nil, "glob patterns, relative to src, to leave out")
	rootCmd.AddCommand(copyCmd)
}
