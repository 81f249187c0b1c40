package main

import (
	"github.com/brickingsoft/tagdispatch/internal/gen"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"os"
)

var rootCmd = &cobra.Command{
	Use:           "tagdispatch",
	Short:         "Generate one-word tagged handles with static dispatch",
	Long:          `tagdispatch reads tagdispatch.yaml (or tagdispatch.toml) next to a Go package and writes the handle types it describes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return err
		}
		if verbose {
			logger, loggerErr := zap.NewDevelopment()
			if loggerErr != nil {
				return loggerErr
			}
			gen.SetLogger(logger)
		}
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		color.NoColor = !useColor(colorFlag)
		return nil
	},
}

var (
	failColor = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
	noteColor = color.New(color.FgYellow)
)

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "manifest path (default: tagdispatch.yaml or tagdispatch.toml in the package directory)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log generator decisions")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		failColor.Fprint(os.Stderr, "error: ")
		os.Stderr.WriteString(err.Error() + "\n")
		_ = gen.Logger().Sync()
		os.Exit(1)
	}
	_ = gen.Logger().Sync()
}

func useColor(flag string) bool {
	switch flag {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// newGenerator builds a generator for the directory named by args, "." by
// default, honoring --config.
func newGenerator(cmd *cobra.Command, args []string) (*gen.Generator, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	config, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	var options []gen.Option
	if config != "" {
		options = append(options, gen.WithManifest(config))
	}
	return gen.New(dir, options...)
}
