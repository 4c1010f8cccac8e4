package query

import (
	"inkfeed/models"
)

// FilterStrategy narrows a post list. Implementations must not modify the input
// slice and must preserve the relative order of the posts they keep.
type FilterStrategy interface {
	// ApplyFilter returns the posts that pass the filter
	ApplyFilter(posts []models.Post) []models.Post
}

// RankingStrategy orders tags for the recommendation widget
type RankingStrategy interface {
	// Rank returns at most limit tags, best first
	Rank(posts []models.Post, limit int) []models.TagCount
}
