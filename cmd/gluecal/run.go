package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process the recently changed events once",
		Long: `Process the events changed within the recent window: glue events move their
contained events along, every other event gets its prefix color and meeting
settings.

Runs never overlap: a run that can't take the lock in time does nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			a, err := openApp(ctx, opts, w)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.dispatcher()
			if err != nil {
				return err
			}
			sum, err := d.Dispatch(ctx)
			fmt.Fprintf(w, "Run %s %s\n", sum.RunID, sum)
			return err
		},
	}
}
