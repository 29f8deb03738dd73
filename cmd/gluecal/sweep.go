package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/gluecal/internal/lock"
)

func newSweepCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Sync every glue event around the current month",
		Long: `Sync every non-recurring glue event from the first day of last month to the
last day of next month, whether it changed recently or not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			a, err := openApp(ctx, opts, w)
			if err != nil {
				return err
			}
			defer a.Close()

			lk, err := lock.New(a.cfg.LockFile)
			if err != nil {
				return err
			}
			err = lk.TryLock(ctx, time.Duration(a.cfg.LockTimeout))
			if errors.Is(err, lock.ErrNotAcquired) {
				fmt.Fprintln(w, "Another run is in progress, try again later")
				return nil
			}
			if err != nil {
				return err
			}
			defer lk.Unlock()

			n, err := a.engine.Sweep(ctx, time.Now())
			fmt.Fprintf(w, "%d glue event(s) synced\n", n)
			return err
		},
	}
}
