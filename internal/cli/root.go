// Package cli defines the launcher's command line.
package cli

import "github.com/spf13/cobra"

// Flags are decoupled from cobra so tests can inspect them.
type Flags struct {
	ConfigPath string
	LogLevel   string
	Console    bool
	NoEmbed    bool
}

// NewRootCommand returns the emudock command. run receives the parsed flags.
func NewRootCommand(run func(*Flags) error) *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:           "emudock",
		Short:         "Launch the emulator inside the EmuDock window",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}
	cmd.Flags().StringVar(&flags.ConfigPath, "config", "", "path to config.json (default: data/config.json next to the executable)")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.Flags().BoolVar(&flags.Console, "console", false, "also log to stderr")
	cmd.Flags().BoolVar(&flags.NoEmbed, "no-embed", false, "leave the emulator in its own window")
	return cmd
}
