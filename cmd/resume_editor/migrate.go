package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/resume-editor/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Applies the embedded schema migrations and optionally purges stale cached job pages.",
	RunE:  runMigrate,
}

var (
	migrateDatabaseURL string
	migratePurgeAfter  time.Duration
)

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	migrateCmd.Flags().DurationVar(&migratePurgeAfter, "purge-job-pages", 0, "Delete cached job pages older than this duration, e.g. 720h")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	databaseURL := migrateDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")

	if migratePurgeAfter > 0 {
		n, err := database.PurgeJobPages(ctx, migratePurgeAfter)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached job page(s)\n", n)
	}
	return nil
}
