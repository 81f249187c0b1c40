package main

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"runtime"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the tagdispatch version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name := color.New(color.FgCyan, color.Bold)
		name.Fprint(cmd.OutOrStdout(), "tagdispatch ")
		fmt.Fprintln(cmd.OutOrStdout(), version+" ("+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+")")
	},
}
