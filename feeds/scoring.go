package feeds

import (
	"sort"

	"inkfeed/models"
	"inkfeed/query"
)

// DefaultTopTags is the size of the recommended tags widget
const DefaultTopTags = 7

// FrequencyRanking ranks tags by how many times they occur across all posts.
// Ties keep the order in which the tags were first seen.
type FrequencyRanking struct{}

func (r *FrequencyRanking) Rank(posts []models.Post, limit int) []models.TagCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, post := range posts {
		for _, tag := range post.TagList() {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	ranked := make([]models.TagCount, len(order))
	for i, tag := range order {
		ranked[i] = models.TagCount{Tag: tag, Count: counts[tag]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// RankTags returns the DefaultTopTags most frequent tags of posts
func RankTags(posts []models.Post) []models.TagCount {
	return (&FrequencyRanking{}).Rank(posts, DefaultTopTags)
}

var _ query.RankingStrategy = (*FrequencyRanking)(nil)
