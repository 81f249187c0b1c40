package main

import (
	"fmt"
	"github.com/brickingsoft/errors"
	"github.com/spf13/cobra"
	"strconv"
)

var errStale = errors.Define("generated files are stale")

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Report generated files that differ from what generate would write",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := newGenerator(cmd, args)
		if err != nil {
			return err
		}
		drifts, err := g.Check()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(drifts) == 0 {
			okColor.Fprintln(out, "up to date")
			return nil
		}
		for _, d := range drifts {
			noteColor.Fprint(out, "stale ")
			have := d.Have
			if have == "" {
				have = "missing"
			}
			fmt.Fprintln(out, d.Path+" ("+d.Enum+"): want "+d.Want+", have "+have)
		}
		return errors.From(errStale, errors.WithMeta("files", strconv.Itoa(len(drifts))))
	},
}
