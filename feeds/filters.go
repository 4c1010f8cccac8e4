package feeds

import (
	"strings"

	"inkfeed/models"
	"inkfeed/query"

	"github.com/samber/lo"
)

// TagFilter keeps posts carrying the exact tag
type TagFilter struct {
	Tag string
}

func (f *TagFilter) ApplyFilter(posts []models.Post) []models.Post {
	return lo.Filter(posts, func(post models.Post, _ int) bool {
		return post.HasTag(f.Tag)
	})
}

// SearchFilter keeps posts whose title contains the term, ignoring case.
// Post content is not searched.
type SearchFilter struct {
	Term string
}

func (f *SearchFilter) ApplyFilter(posts []models.Post) []models.Post {
	if f.Term == "" {
		return posts
	}
	term := strings.ToLower(f.Term)
	return lo.Filter(posts, func(post models.Post, _ int) bool {
		return strings.Contains(strings.ToLower(post.Title), term)
	})
}

// FilterBySearch returns the posts whose title matches term. An empty term
// returns posts unchanged.
func FilterBySearch(posts []models.Post, term string) []models.Post {
	return (&SearchFilter{Term: term}).ApplyFilter(posts)
}

// FilterByTag returns the posts carrying tag
func FilterByTag(posts []models.Post, tag string) []models.Post {
	return (&TagFilter{Tag: tag}).ApplyFilter(posts)
}

var _ query.FilterStrategy = (*TagFilter)(nil)
var _ query.FilterStrategy = (*SearchFilter)(nil)
