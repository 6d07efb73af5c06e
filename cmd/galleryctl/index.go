package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"photo-gallery/internal/database"
	"photo-gallery/internal/indexer"
)

const progressInterval = 250 * time.Millisecond

func newIndexCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan the image directories into the database",
		Long: `Scan every configured root and record new images. With --force every
file is re-hashed and existing records are overwritten. Press Ctrl-C to stop;
an interrupted scan does not update the last indexed time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, config, err := opts.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDatabase(cmd, db)

			out := cmd.OutOrStdout()
			total, err := runIndex(cmd.Context(), db, config.ImageDirs, force, out, isTerminal(out))
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, "Indexing interrupted; last indexed time left unchanged.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Indexed %d files: %d new, %d skipped, %d invalid, %d errors\n",
				total.Seen, total.Inserted, total.Skipped, total.Invalid, total.Errors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "re-hash every file and overwrite existing records")
	return cmd
}

// runIndex scans roots in order and records the finish time when every
// root was scanned. Progress is redrawn on one line when interactive.
func runIndex(ctx context.Context, db *database.Database, roots []string, force bool, out io.Writer, interactive bool) (indexer.ScanResult, error) {
	lastIndexed, err := db.GetLastIndexed(context.WithoutCancel(ctx))
	if err != nil {
		return indexer.ScanResult{}, fmt.Errorf("failed to read last indexed time: %w", err)
	}

	var progress indexer.Progress
	scanner := indexer.NewScanner(db).WithProgress(&progress)

	stopProgress := func() {}
	if interactive {
		stopProgress = showProgress(out, &progress)
	}

	var total indexer.ScanResult
	var errs error
	for _, root := range roots {
		if ctx.Err() != nil {
			stopProgress()
			return total, context.Canceled
		}

		res, err := scanner.ScanRoot(ctx, root, force, lastIndexed)
		total.Seen += res.Seen
		total.Inserted += res.Inserted
		total.Skipped += res.Skipped
		total.Invalid += res.Invalid
		total.Errors += res.Errors
		total.Folders = append(total.Folders, res.Folders...)

		if ctx.Err() != nil {
			stopProgress()
			return total, context.Canceled
		}
		if err != nil {
			errs = errors.Join(errs, err)
		}
	}
	stopProgress()

	if errs != nil {
		return total, errs
	}

	if err := db.SetLastIndexed(context.WithoutCancel(ctx), time.Now().UTC()); err != nil {
		return total, fmt.Errorf("failed to record last indexed time: %w", err)
	}
	return total, nil
}

// showProgress redraws a progress line until the returned func is called.
func showProgress(out io.Writer, progress *indexer.Progress) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fmt.Fprintf(out, "\r\033[KScanning: %d files seen, %d new", progress.Seen.Load(), progress.Inserted.Load())
			case <-done:
				fmt.Fprint(out, "\r\033[K")
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
