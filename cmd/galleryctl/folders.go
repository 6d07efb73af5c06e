package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"photo-gallery/internal/database"
	"photo-gallery/internal/media"
)

func newFoldersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List or delete indexed folders",
	}
	cmd.AddCommand(newFoldersListCmd(opts), newFoldersDeleteCmd(opts))
	return cmd
}

func newFoldersListCmd(opts *options) *cobra.Command {
	var search, root string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders with their image counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			db, _, err := opts.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDatabase(cmd, db)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FOLDER\tIMAGES\tROOT")

			const pageSize = 500
			for page := 1; ; page++ {
				folders, err := db.Folders(ctx, database.FolderQuery{
					Search: search, Root: root, Page: page, PerPage: pageSize,
				})
				if err != nil {
					return fmt.Errorf("failed to list folders: %w", err)
				}
				for _, f := range folders {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Name, f.Count, f.Root)
				}
				if len(folders) < pageSize {
					break
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only folders whose name contains this text")
	cmd.Flags().StringVar(&root, "root", "", "only folders under this root")
	return cmd
}

func newFoldersDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete every image record of a folder (files are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := media.ValidateFolder(name); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			db, _, err := opts.openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDatabase(cmd, db)

			deleted, err := db.DeleteFolder(ctx, name)
			if err != nil {
				return err
			}
			if deleted == 0 {
				return fmt.Errorf("folder %q not found", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d image records from %s.\n", deleted, name)
			return nil
		},
	}
}
