package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"inkfeed/config"
	"inkfeed/models"

	"github.com/samber/lo"
)

// loadFixture reads a JSON array of posts in the content API format
func loadFixture(path string, src config.Source) ([]models.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	return lo.Map(posts, func(p models.Post, _ int) models.Post {
		return decorate(p, src)
	}), nil
}
