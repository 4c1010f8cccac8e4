package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkfeed/config"
	"inkfeed/models"

	"github.com/mmcdole/gofeed"
)

func (c *Collector) loadFeed(ctx context.Context, src config.Source) ([]models.Post, error) {
	// gofeed parsers keep state while parsing, so each fetch gets its own
	fp := gofeed.NewParser()
	fp.Client = c.opts.HTTPClient
	if c.opts.UserAgent != "" {
		fp.UserAgent = c.opts.UserAgent
	}

	feed, err := fp.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}

	posts := make([]models.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		posts = append(posts, decorate(itemPost(item), src))
	}
	return posts, nil
}

// itemPost maps a feed item to a post. Feed items are external: the id is the
// link readers are sent to.
func itemPost(item *gofeed.Item) models.Post {
	id := item.Link
	if id == "" {
		id = item.GUID
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	date := item.Published
	if item.PublishedParsed != nil {
		date = item.PublishedParsed.UTC().Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		date = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	var image string
	if item.Image != nil {
		image = item.Image.URL
	}
	if image == "" {
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				image = enc.URL
				break
			}
		}
	}

	return models.Post{
		Id:       id,
		Title:    item.Title,
		Content:  body,
		Date:     date,
		ImageUrl: image,
		Tags:     item.Categories,
	}
}
