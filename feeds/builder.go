package feeds

import (
	"inkfeed/models"
	"inkfeed/query"
)

// FeedBuilder chains filters over a post list
type FeedBuilder struct {
	filters []query.FilterStrategy
}

func NewFeedBuilder() *FeedBuilder {
	return &FeedBuilder{
		filters: make([]query.FilterStrategy, 0),
	}
}

func (b *FeedBuilder) AddFilter(filter query.FilterStrategy) *FeedBuilder {
	b.filters = append(b.filters, filter)
	return b
}

// Build applies every filter in the order they were added
func (b *FeedBuilder) Build(posts []models.Post) []models.Post {
	for _, filter := range b.filters {
		posts = filter.ApplyFilter(posts)
	}
	return posts
}

// Route returns the posts to render for a fragment and a search term. The tag
// selected by the fragment is applied first, then the title search.
func Route(hash string, posts []models.Post, term string) []models.Post {
	route := ResolveRoute(hash)

	builder := NewFeedBuilder()
	if !route.IsAll() {
		builder.AddFilter(&TagFilter{Tag: route.Tag})
	}
	if term != "" {
		builder.AddFilter(&SearchFilter{Term: term})
	}
	return builder.Build(posts)
}
