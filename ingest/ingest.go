// Package ingest builds the stub's post collection from RSS/Atom feeds and
// JSON fixture files.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"inkfeed/config"
	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PlaceholderImage is used for posts that carry no image of their own
const PlaceholderImage = "https://i.imgur.com/OQI44rW.png"

const DefaultTimeout = 15 * time.Second

type Options struct {
	// BaseDir resolves relative fixture paths
	BaseDir    string
	HTTPClient *http.Client
	UserAgent  string
}

// Collector loads posts from every configured source concurrently
type Collector struct {
	opts Options
}

func NewCollector(opts Options) *Collector {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Collector{opts: opts}
}

// Collect loads all sources and merges them into one collection: duplicate
// titles are dropped and the result is ordered newest first. A source that
// fails is logged and skipped. Collect only fails when every source failed.
func (c *Collector) Collect(ctx context.Context, sources []config.Source) ([]models.Post, error) {
	results := make([][]models.Post, len(sources))
	failures := make([]error, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			posts, err := c.load(ctx, src)
			if err != nil {
				log.WithFields(log.Fields{
					"source": src.Name,
					"type":   src.Type,
					"error":  err,
				}).Warn("Skipping source")
				failures[i] = err
				return nil
			}
			log.WithFields(log.Fields{
				"source": src.Name,
				"posts":  len(posts),
			}).Info("Loaded source")
			results[i] = posts
			return nil
		})
	}
	g.Wait()

	failed := lo.Compact(failures)
	if len(sources) > 0 && len(failed) == len(sources) {
		return nil, fmt.Errorf("all %d sources failed: %w", len(sources), failed[0])
	}

	return Merge(lo.Flatten(results)), nil
}

func (c *Collector) load(ctx context.Context, src config.Source) ([]models.Post, error) {
	switch src.Type {
	case config.SourceRSS:
		return c.loadFeed(ctx, src)
	case config.SourceJSON:
		path := src.Path
		if !filepath.IsAbs(path) && c.opts.BaseDir != "" {
			path = filepath.Join(c.opts.BaseDir, path)
		}
		return loadFixture(path, src)
	}
	return nil, fmt.Errorf("unknown source type %q", src.Type)
}

// Merge drops posts without a title and posts whose title repeats an earlier
// one ignoring case, then orders the rest newest first. Posts without a
// parseable date keep their relative order after the dated ones.
func Merge(posts []models.Post) []models.Post {
	titled := lo.Filter(posts, func(p models.Post, _ int) bool {
		return p.Title != ""
	})
	unique := lo.UniqBy(titled, func(p models.Post) string {
		return strings.ToLower(p.Title)
	})

	dates := lo.Map(unique, func(p models.Post, _ int) time.Time {
		t, _ := feeds.ParseDate(p.Date)
		return t
	})
	order := lo.Range(len(unique))
	sort.SliceStable(order, func(i, j int) bool {
		return dates[order[i]].After(dates[order[j]])
	})

	return lo.Map(order, func(i int, _ int) models.Post {
		return unique[i]
	})
}

// decorate fills what a source left empty: the source label, the image and
// the configured extra tags
func decorate(post models.Post, src config.Source) models.Post {
	if post.Source == "" {
		post.Source = src.SourceLabel()
	}
	if post.ImageUrl == "" {
		post.ImageUrl = FirstImage(post.Content)
	}
	if post.ImageUrl == "" {
		post.ImageUrl = PlaceholderImage
	}
	post.Tags = lo.Uniq(append(post.TagList(), src.Tags...))
	return post
}
