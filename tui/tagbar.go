package tui

import (
	"fmt"

	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/charmbracelet/lipgloss"
)

// tagBar is the recommendation widget: "All" followed by the ranked tags
type tagBar struct {
	tags      []models.TagCount
	active    string
	cursor    int
	selecting bool
}

// entries returns the number of selectable entries including "All"
func (t *tagBar) entries() int {
	return len(t.tags) + 1
}

func (t *tagBar) move(delta int) {
	t.cursor = min(max(t.cursor+delta, 0), t.entries()-1)
}

// selectedHash is the fragment the entry under the cursor navigates to
func (t *tagBar) selectedHash() string {
	if t.cursor == 0 || t.cursor > len(t.tags) {
		return "#"
	}
	return feeds.TagHash(t.tags[t.cursor-1].Tag)
}

func (t *tagBar) render(width int) string {
	sep := tagSeparatorStyle.Render(" · ")

	label := func(i int, text string, active bool) string {
		if t.selecting && i == t.cursor {
			text = "[" + text + "]"
		}
		if active {
			return tagActiveStyle.Render(text)
		}
		return tagStyle.Render(text)
	}

	parts := []string{label(0, "All", t.active == "")}
	for i, tc := range t.tags {
		parts = append(parts, label(i+1, fmt.Sprintf("#%s %d", tc.Tag, tc.Count), tc.Tag == t.active))
	}

	// Stop before the row would exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	return lipgloss.NewStyle().Width(width).PaddingLeft(1).Render(row)
}
