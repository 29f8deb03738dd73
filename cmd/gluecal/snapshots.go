package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/gluecal/internal"
	"github.com/guilherme-santos/gluecal/internal/glue"
	"github.com/guilherme-santos/gluecal/internal/lock"
)

func newSnapshotsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect or reset the remembered glue layouts",
	}
	cmd.AddCommand(newSnapshotsListCommand(opts))
	cmd.AddCommand(newSnapshotsClearCommand(opts))
	return cmd
}

func newSnapshotsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			_, storage, err := openStorage(opts)
			if err != nil {
				return err
			}
			defer storage.Close()

			snaps, err := glue.NewStore(w, storage).All(cmd.Context())
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(snaps))
			for id := range snaps {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			for _, id := range ids {
				snap := snaps[id]
				fmt.Fprintf(w, "%s at %s, %d event(s)\n", id, internal.FormatDateTime(snap.Anchor), len(snap.Children))
				for _, c := range snap.Children {
					fmt.Fprintf(w, "  %q (%s) offset %s, lasts %s\n", c.Title, c.ID, c.Offset, c.Duration)
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(w, "No snapshots")
			}
			return nil
		},
	}
}

func newSnapshotsClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every stored snapshot",
		Long: `Forget every stored snapshot. Glue events moved before their next run won't
carry their contained events along.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if !yes {
				return errors.New("refusing to clear snapshots without --yes")
			}

			cfg, storage, err := openStorage(opts)
			if err != nil {
				return err
			}
			defer storage.Close()

			lk, err := lock.New(cfg.LockFile)
			if err != nil {
				return err
			}
			if err := lk.TryLock(ctx, time.Duration(cfg.LockTimeout)); err != nil {
				return err
			}
			defer lk.Unlock()

			if err := glue.NewStore(w, storage).ClearAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(w, "Snapshots cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
