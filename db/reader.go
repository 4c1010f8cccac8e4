package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkfeed/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

// ErrPostNotFound is returned by GetPost when no post has the requested id
var ErrPostNotFound = errors.New("post not found")

var postColumns = []string{"id", "title", "content", "date", "image_url", "source"}

type Reader struct {
	db *sql.DB
}

func NewReader(database string) (*Reader, error) {
	db, err := connection(database, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Reader{db: db}, nil
}

func (reader *Reader) Close() error {
	return reader.db.Close()
}

// GetPosts returns every stored post in serving order
func (reader *Reader) GetPosts(ctx context.Context) ([]models.Post, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(postColumns...).From("posts").OrderBy("position").Asc()
	sql, args := sb.Build()

	rows, err := reader.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	tags, err := reader.tags(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if t, ok := tags[posts[i].Id]; ok {
			posts[i].Tags = t
		}
	}

	return posts, nil
}

// GetPost returns the post with the given id or ErrPostNotFound
func (reader *Reader) GetPost(ctx context.Context, id string) (*models.Post, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(postColumns...).From("posts").Where(sb.Equal("id", id))
	sql, args := sb.Build()

	post, err := scanPost(reader.db.QueryRowContext(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	tags, err := reader.tags(ctx, id)
	if err != nil {
		return nil, err
	}
	if t, ok := tags[id]; ok {
		post.Tags = t
	}

	return &post, nil
}

// Count returns the number of stored posts
func (reader *Reader) Count(ctx context.Context) (int, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("count(*)").From("posts")
	sql, args := sb.Build()

	var count int
	if err := reader.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("query error: %w", err)
	}
	return count, nil
}

// tags loads the tag lists keyed by post id, for one post when postID is set
func (reader *Reader) tags(ctx context.Context, postID string) (map[string][]string, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("post_id", "tag").From("post_tags")
	if postID != "" {
		sb.Where(sb.Equal("post_id", postID))
	}
	sb.OrderBy("post_id", "position").Asc()
	sql, args := sb.Build()

	rows, err := reader.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	tags := make(map[string][]string)
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		tags[id] = append(tags[id], tag)
	}
	return tags, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPost reads one row of postColumns. Posts without tags get an empty list
// so they serialize as [] rather than null.
func scanPost(row scanner) (models.Post, error) {
	post := models.Post{Tags: []string{}}
	err := row.Scan(&post.Id, &post.Title, &post.Content, &post.Date, &post.ImageUrl, &post.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return post, ErrPostNotFound
	}
	if err != nil {
		return post, fmt.Errorf("scan error: %w", err)
	}
	return post, nil
}
