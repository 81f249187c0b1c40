package main

import (
	"fmt"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [dir]",
	Short: "Write the generated files of a package",
	Long:  `generate writes every file the manifest describes whose content changed. It is meant to run from a //go:generate line.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := newGenerator(cmd, args)
		if err != nil {
			return err
		}
		written, err := g.Generate()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(written) == 0 {
			okColor.Fprintln(out, "up to date")
			return nil
		}
		for _, path := range written {
			okColor.Fprint(out, "wrote ")
			fmt.Fprintln(out, path)
		}
		return nil
	},
}
