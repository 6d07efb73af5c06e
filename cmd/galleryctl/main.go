package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"photo-gallery/internal/database"
	"photo-gallery/internal/startup"
)

// Default timeout for single database operations
const defaultTimeout = 30 * time.Second

type options struct {
	databaseDir string
	imagesDirs  string
}

func main() {
	// Cancel on interrupt so a running index stops cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "galleryctl",
		Short: "Manage the photo gallery index",
		Long: strings.TrimSpace(`
Index photo directories and inspect or edit the gallery database without
running the server. Settings come from the same environment variables,
.env file and CONFIG_FILE as the server; flags override them.
`),
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.databaseDir, "database-dir", "", "database directory (overrides DATABASE_DIR)")
	root.PersistentFlags().StringVar(&opts.imagesDirs, "images-dirs", "", "comma-separated scan roots (overrides IMAGES_DIRS)")

	root.AddCommand(
		newIndexCmd(opts),
		newStatusCmd(opts),
		newFoldersCmd(opts),
	)
	return root
}

// loadConfig resolves the server configuration and applies flag overrides.
func (o *options) loadConfig() (*startup.Config, error) {
	config, err := startup.ResolveConfig()
	if err != nil {
		return nil, err
	}
	if o.databaseDir != "" {
		config.DatabaseDir = o.databaseDir
		config.DatabasePath = filepath.Join(config.DatabaseDir, startup.DatabaseFile)
	}
	if o.imagesDirs != "" {
		config.ImageDirs = nil
		for _, dir := range strings.Split(o.imagesDirs, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				config.ImageDirs = append(config.ImageDirs, dir)
			}
		}
	}
	return config, nil
}

// openDatabase resolves configuration and opens the gallery database.
func (o *options) openDatabase(ctx context.Context) (*database.Database, *startup.Config, error) {
	config, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := config.EnsureDatabaseDir(); err != nil {
		return nil, nil, err
	}

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s (check DATABASE_DIR): %w", config.DatabasePath, err)
	}
	return db, config, nil
}

// closeDatabase closes db, reporting failures on stderr.
func closeDatabase(cmd *cobra.Command, db *database.Database) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close database: %v\n", err)
	}
}
