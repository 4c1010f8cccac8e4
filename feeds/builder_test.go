package feeds_test

import (
	"testing"

	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	posts := []models.Post{
		{Id: "a", Title: "Alpha", Source: "Local Data", Tags: []string{"x"}},
		{Id: "b", Title: "Beta", Source: "External Blog", Tags: []string{"x", "y"}},
	}

	tests := []struct {
		name     string
		hash     string
		term     string
		expected []string
	}{
		{name: "tag route", hash: "#/tag/y", expected: []string{"b"}},
		{name: "shared tag", hash: "#/tag/x", expected: []string{"a", "b"}},
		{name: "all posts", hash: "#", expected: []string{"a", "b"}},
		{name: "unknown tag", hash: "#/tag/z", expected: []string{}},
		{name: "search only", hash: "", term: "alp", expected: []string{"a"}},
		{name: "tag and search", hash: "#/tag/x", term: "BETA", expected: []string{"b"}},
		{name: "tag and search without overlap", hash: "#/tag/y", term: "alpha", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feeds.Route(tt.hash, posts, tt.term)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.Id)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFeedBuilderAppliesFiltersInOrder(t *testing.T) {
	posts := []models.Post{
		{Id: "1", Title: "one", Tags: []string{"a"}},
		{Id: "2", Title: "two", Tags: []string{"a"}},
		{Id: "3", Title: "three", Tags: []string{"b"}},
	}

	got := feeds.NewFeedBuilder().
		AddFilter(&feeds.TagFilter{Tag: "a"}).
		AddFilter(&feeds.SearchFilter{Term: "T"}).
		Build(posts)

	assert.Equal(t, []models.Post{posts[1]}, got)
	assert.Equal(t, posts, feeds.NewFeedBuilder().Build(posts))
}
