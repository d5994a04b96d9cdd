package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands and
// global flags registered. The persistent pre-run resolves the log
// level, loads the config file, and attaches the logger to the command
// context.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//   - With --quiet (-q): errors only
//
// Example:
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose    bool
		quiet      bool
		configPath string
	)

	root := &cobra.Command{
		Use:           appName,
		Short:         "Stemma edits and renders tree-style people charts",
		Long:          `Stemma is a people-chart engine: person cards and grouping sections joined by directional connections, with batched undo/redo, automatic hierarchical layout, clipboard presets, and JSON persistence. The CLI edits, serves, lays out, and exports chart files.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case quiet:
				c.SetLogLevel(LogError)
			case verbose:
				c.SetLogLevel(LogDebug)
			}

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg

			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/stemma/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
