package feeds_test

import (
	"fmt"
	"testing"

	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/stretchr/testify/assert"
)

func TestRankTags(t *testing.T) {
	tests := []struct {
		name     string
		posts    []models.Post
		expected []models.TagCount
	}{
		{
			name:     "no posts",
			posts:    nil,
			expected: []models.TagCount{},
		},
		{
			name: "missing tags are treated as empty",
			posts: []models.Post{
				{Id: "a"},
				{Id: "b", Tags: []string{}},
			},
			expected: []models.TagCount{},
		},
		{
			name: "ordered by count",
			posts: []models.Post{
				{Id: "a", Tags: []string{"go", "rust"}},
				{Id: "b", Tags: []string{"rust"}},
				{Id: "c", Tags: []string{"rust", "zig"}},
			},
			expected: []models.TagCount{
				{Tag: "rust", Count: 3},
				{Tag: "go", Count: 1},
				{Tag: "zig", Count: 1},
			},
		},
		{
			name: "ties keep first seen order",
			posts: []models.Post{
				{Id: "a", Tags: []string{"beta", "alpha"}},
				{Id: "b", Tags: []string{"gamma"}},
				{Id: "c", Tags: []string{"alpha", "beta", "gamma"}},
			},
			expected: []models.TagCount{
				{Tag: "beta", Count: 2},
				{Tag: "alpha", Count: 2},
				{Tag: "gamma", Count: 2},
			},
		},
		{
			name: "repeated tag within a post counts twice",
			posts: []models.Post{
				{Id: "a", Tags: []string{"x", "y"}},
				{Id: "b", Tags: []string{"y", "y"}},
			},
			expected: []models.TagCount{
				{Tag: "y", Count: 3},
				{Tag: "x", Count: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, feeds.RankTags(tt.posts))
		})
	}
}

func TestRankTagsLimit(t *testing.T) {
	posts := make([]models.Post, 0)
	for i := 0; i < 20; i++ {
		posts = append(posts, models.Post{
			Id:   fmt.Sprintf("p%d", i),
			Tags: []string{fmt.Sprintf("tag-%d", i), "common"},
		})
	}

	ranked := feeds.RankTags(posts)

	assert.Len(t, ranked, feeds.DefaultTopTags)
	assert.Equal(t, models.TagCount{Tag: "common", Count: 20}, ranked[0])
	// The remaining slots go to the first seen singletons
	for i, tc := range ranked[1:] {
		assert.Equal(t, fmt.Sprintf("tag-%d", i), tc.Tag)
	}
}

func TestFrequencyRankingCustomLimit(t *testing.T) {
	posts := []models.Post{
		{Id: "a", Tags: []string{"x", "y", "z"}},
	}
	ranking := &feeds.FrequencyRanking{}

	assert.Len(t, ranking.Rank(posts, 2), 2)
	assert.Empty(t, ranking.Rank(posts, 0))
}
