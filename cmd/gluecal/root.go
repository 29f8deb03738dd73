package main

import (
	"github.com/spf13/cobra"

	"github.com/guilherme-santos/gluecal/file"
)

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gluecal",
		Short: "Keep your calendar tidy",
		Long: `gluecal colors prefixed events, normalizes meetings and keeps the events
inside a "glue" event moving with it.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", file.DefaultPath(), "configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every calendar call")

	cmd.AddCommand(newConfigureCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newSnapshotsCommand(opts))

	return cmd
}
