package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show library counts and the last index time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			db, config, err := opts.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDatabase(cmd, db)

			stats, err := db.LibraryStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read library stats: %w", err)
			}
			lastIndexed, err := db.GetLastIndexed(ctx)
			if err != nil {
				return fmt.Errorf("failed to read last indexed time: %w", err)
			}
			roots, err := db.RootsWithCounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to read roots: %w", err)
			}

			last := "never"
			if !lastIndexed.IsZero() {
				last = lastIndexed.Local().Format(time.RFC3339)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Database:\t%s\n", config.DatabasePath)
			fmt.Fprintf(tw, "Last indexed:\t%s\n", last)
			fmt.Fprintf(tw, "Images:\t%d\n", stats.Images)
			fmt.Fprintf(tw, "Folders:\t%d\n", stats.Folders)
			fmt.Fprintf(tw, "Tags:\t%d\n", stats.Tags)
			for _, root := range roots {
				fmt.Fprintf(tw, "Root %s:\t%d images in %d folders\n", root.Root, root.ImageCount, root.FolderCount)
			}
			return tw.Flush()
		},
	}
}
