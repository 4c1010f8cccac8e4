package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Tidy removes posts published longer ago than retention from the database.
// Posts without a parseable date are kept. A zero retention keeps everything.
func Tidy(ctx context.Context, database string, retention time.Duration) (int64, error) {
	writer, err := NewWriter(database)
	if err != nil {
		return 0, err
	}
	defer writer.Close()

	return writer.Tidy(ctx, retention)
}

func (writer *Writer) Tidy(ctx context.Context, retention time.Duration) (int64, error) {
	return tidy(ctx, writer.db, retention, time.Now())
}

func tidy(ctx context.Context, db *sql.DB, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	cutoff := now.Add(-retention).Unix()
	deletePosts := sb.SQLite.NewDeleteBuilder()
	deletePosts.DeleteFrom("posts").Where(
		deletePosts.GreaterThan("published_at", 0),
		deletePosts.LessThan("published_at", cutoff),
	)
	sql, args := deletePosts.Build()

	res, err := db.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("tidy error: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"retention": retention,
		"removed":   removed,
	}).Info("Tidied database")

	return removed, nil
}
