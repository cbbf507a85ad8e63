package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetJobPage returns the cached job description for url when it was fetched within maxAge.
// A non-positive maxAge accepts any age.
func (db *DB) GetJobPage(ctx context.Context, url string, maxAge time.Duration) (string, bool, error) {
	var text string
	var fetchedAt time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT text, fetched_at FROM job_pages WHERE url = $1`,
		url,
	).Scan(&text, &fetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get job page: %w", err)
	}

	if !isFresh(fetchedAt, maxAge, time.Now()) {
		return "", false, nil
	}
	return text, true, nil
}

// SaveJobPage stores or refreshes the cached job description for url
func (db *DB) SaveJobPage(ctx context.Context, url, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_pages (url, text, fetched_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (url) DO UPDATE SET text = $2, fetched_at = NOW()`,
		url, text,
	)
	if err != nil {
		return fmt.Errorf("failed to save job page: %w", err)
	}
	return nil
}

// PurgeJobPages deletes cache entries older than maxAge and returns how many were removed
func (db *DB) PurgeJobPages(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM job_pages WHERE fetched_at < $1`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge job pages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func isFresh(fetchedAt time.Time, maxAge time.Duration, now time.Time) bool {
	return maxAge <= 0 || now.Sub(fetchedAt) <= maxAge
}
