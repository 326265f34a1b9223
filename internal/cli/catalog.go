package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	corporaJSON  bool
	examplesJSON bool
)

var corporaCmd = &cobra.Command{
	Use:   "corpora",
	Short: "List the searchable corpora",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		corpora := relay.Corpora()
		if corporaJSON {
			return outputJSON(cmd.OutOrStdout(), corpora)
		}

		w := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		for _, c := range corpora {
			bold.Fprintf(w, "%s  %s", c.Label(), c.Key)
			faint.Fprintf(w, "  (%d 份文件)\n", c.Documents)
			if c.Description != "" {
				fmt.Fprintf(w, "    %s\n", c.Description)
			}
		}
		return nil
	},
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List example questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		examples := relay.Examples()
		if examplesJSON {
			return outputJSON(cmd.OutOrStdout(), examples)
		}

		w := cmd.OutOrStdout()
		for i, q := range examples {
			fmt.Fprintf(w, "%2d. %s\n", i+1, q)
		}
		return nil
	},
}

func init() {
	corporaCmd.Flags().BoolVar(&corporaJSON, "json", false, "output as JSON")
	examplesCmd.Flags().BoolVar(&examplesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(corporaCmd, examplesCmd)
}
