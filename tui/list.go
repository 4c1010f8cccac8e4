package tui

import (
	"strings"

	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/charmbracelet/lipgloss"
)

func renderListItem(card models.Card, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(card.Post.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(card.Post.Title, width-4))
	}

	meta := itemMetaStyle.Render(strings.Join(metaParts(card), " · "))
	meta = "  " + itemSourceStyle.Render(card.Post.Source) + " " + meta
	if card.External {
		meta += itemMetaStyle.Render(" ↗")
	}

	return title + "\n" + meta
}

// metaParts lists the date and read time of a card, skipping empty values
func metaParts(card models.Card) []string {
	var parts []string
	for _, p := range []string{card.Date, card.ReadTime} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// renderList shows the cards around the cursor, or message when there are none
func renderList(cards []models.Card, cursor, height, width int, message string) string {
	if len(cards) == 0 {
		return centered(message, width, height)
	}

	// Each item is 2 lines + 1 blank line
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(cards) {
		end = len(cards)
		start = max(0, end-visible)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(cards[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// renderPreview shows the selected card from line scroll on. With full set,
// the whole post text is shown instead of the snippet.
func renderPreview(card *models.Card, width, height, scroll int, full bool) string {
	if card == nil {
		return centered("Select an article", width, height)
	}

	lines := previewLines(card, width, full)
	scroll = min(max(scroll, 0), len(lines)-1)
	lines = lines[scroll:]
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// previewLines lays out the preview of card, one entry per screen line
func previewLines(card *models.Card, width int, full bool) []string {
	if card == nil {
		return nil
	}
	contentWidth := max(width-2, 10)

	title := previewTitleStyle.Width(contentWidth).Render(card.Post.Title)
	meta := itemSourceStyle.Render(card.Post.Source) + " " + itemMetaStyle.Render(strings.Join(metaParts(*card), " · "))

	text := card.Snippet
	if full {
		text = feeds.PlainText(card.Post.Content)
	}
	if strings.TrimSpace(text) == "" {
		text = "(No content available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(text, contentWidth))

	link := "Read more: " + card.Href
	if card.External {
		link = "Opens in browser: " + card.Href
	}
	linkLine := previewLinkStyle.Width(contentWidth).Render(link)

	content := lipgloss.JoinVertical(lipgloss.Left, title, meta, "", body, "", linkLine)
	return strings.Split(content, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func centered(s string, width, height int) string {
	return lipgloss.Place(max(width, lipgloss.Width(s)), max(height, 1), lipgloss.Center, lipgloss.Center, messageStyle.Render(s))
}
