package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docvars/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Render one content file, with variables expanded, to standalone HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, table, err := loadTable(cmd)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = preview.OutputPath(args[0])
		}

		page, err := preview.New(table).RenderFile(args[0], output)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Preview of %q written to %s (%d replacements)", page.Title, output, page.Replacements)
		return nil
	},
}

func init() {
	previewCmd.Flags().StringP("output", "o", "", "output HTML path (default <file>.preview.html)")
	rootCmd.AddCommand(previewCmd)
}
