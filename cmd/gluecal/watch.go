package main

import (
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/guilherme-santos/gluecal/internal"
)

func newWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run on the configured schedule until interrupted",
		Long: `Trigger a run every time watch_schedule fires. A tick that finds the
previous run still going waits for the lock and gives up after lock_timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			a, err := openApp(ctx, opts, w)
			if err != nil {
				return err
			}
			defer a.Close()

			c := cron.New()
			_, err = c.AddFunc(a.cfg.WatchSchedule, func() {
				d, err := a.dispatcher()
				if err != nil {
					internal.Logf(w, "watch:", nil, "Unable to start run: %v", err)
					return
				}
				sum, err := d.Dispatch(ctx)
				if err != nil {
					internal.Logf(w, "watch:", nil, "Run %s failed: %v", sum.RunID, err)
				}
			})
			if err != nil {
				return err
			}

			internal.Logf(w, "watch:", nil, "Watching %s on %q", a.cfg.CalendarID, a.cfg.WatchSchedule)
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			internal.Logf(w, "watch:", nil, "Stopped")
			return nil
		},
	}
}
