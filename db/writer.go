package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inkfeed/feeds"
	"inkfeed/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Writer owns the single write connection of the stub database
type Writer struct {
	db *sql.DB
}

func NewWriter(database string) (*Writer, error) {
	db, err := connection(database, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Writer{db: db}, nil
}

func (writer *Writer) Close() error {
	return writer.db.Close()
}

// ReplacePosts swaps the stored collection for posts in one transaction. The
// slice order is kept as the serving order. Posts repeating an earlier id are
// skipped. It returns the number of posts stored.
func (writer *Writer) ReplacePosts(ctx context.Context, posts []models.Post) (int, error) {
	unique := lo.UniqBy(posts, func(p models.Post) string {
		return p.Id
	})

	tx, err := writer.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin error: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"post_tags", "posts"} {
		sql, args := sqlbuilder.SQLite.NewDeleteBuilder().DeleteFrom(table).Build()
		if _, err := tx.ExecContext(ctx, sql, args...); err != nil {
			return 0, fmt.Errorf("delete error: %w", err)
		}
	}

	now := time.Now().Unix()
	for i, post := range unique {
		if err := insertPost(ctx, tx, i, post, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit error: %w", err)
	}

	log.WithFields(log.Fields{
		"posts":      len(unique),
		"duplicates": len(posts) - len(unique),
	}).Info("Replaced posts")

	return len(unique), nil
}

func insertPost(ctx context.Context, tx *sql.Tx, position int, post models.Post, importedAt int64) error {
	var published int64
	if t, ok := feeds.ParseDate(post.Date); ok {
		published = t.Unix()
	}

	insertPost := sqlbuilder.SQLite.NewInsertBuilder()
	insertPost.InsertInto("posts").
		Cols("id", "position", "title", "content", "date", "published_at", "image_url", "source", "imported_at").
		Values(post.Id, position, post.Title, post.Content, post.Date, published, post.ImageUrl, post.Source, importedAt)
	sql, args := insertPost.Build()
	if _, err := tx.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert error for post %q: %w", post.Id, err)
	}

	if len(post.Tags) == 0 {
		return nil
	}

	insertTags := sqlbuilder.SQLite.NewInsertBuilder()
	insertTags.InsertInto("post_tags").Cols("post_id", "position", "tag")
	for i, tag := range post.Tags {
		insertTags.Values(post.Id, i, tag)
	}
	sql, args = insertTags.Build()
	if _, err := tx.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert tags error for post %q: %w", post.Id, err)
	}

	return nil
}
