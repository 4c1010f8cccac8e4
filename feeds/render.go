package feeds

import (
	"fmt"
	"strings"
	"time"

	"inkfeed/models"

	"github.com/samber/lo"
)

const (
	DefaultWordsPerMinute = 225
	DefaultSnippetLength  = 100

	NoArticlesMessage = "No articles found."
	LoadingMessage    = "Loading articles..."
	FailureMessage    = "Could not load articles. Is the backend server running?"
)

// DefaultInternalSources are the source labels of posts that live in this app
var DefaultInternalSources = []string{"My Blog (Blogger)", "Local Data"}

// RenderOptions configures how posts become cards
type RenderOptions struct {
	InternalSources []string
	WordsPerMinute  int
	SnippetLength   int
	Extract         TextExtractor
}

// Renderer turns posts into cards
type Renderer struct {
	internal       map[string]bool
	wordsPerMinute int
	snippetLength  int
	extract        TextExtractor
}

func NewRenderer(opts RenderOptions) *Renderer {
	sources := opts.InternalSources
	if sources == nil {
		sources = DefaultInternalSources
	}
	r := &Renderer{
		internal:       lo.SliceToMap(sources, func(s string) (string, bool) { return s, true }),
		wordsPerMinute: opts.WordsPerMinute,
		snippetLength:  opts.SnippetLength,
		extract:        opts.Extract,
	}
	if r.wordsPerMinute <= 0 {
		r.wordsPerMinute = DefaultWordsPerMinute
	}
	if r.snippetLength <= 0 {
		r.snippetLength = DefaultSnippetLength
	}
	if r.extract == nil {
		r.extract = PlainText
	}
	return r
}

// Render builds one card per post, keeping the order of posts
func (r *Renderer) Render(posts []models.Post) []models.Card {
	return lo.Map(posts, func(post models.Post, _ int) models.Card {
		return r.Card(post)
	})
}

// Card builds the card for a single post
func (r *Renderer) Card(post models.Post) models.Card {
	text := r.extract(post.Content)
	card := models.Card{
		Post:     post,
		External: r.IsExternal(post),
		ReadTime: readTime(text, post.Content, r.wordsPerMinute),
		Snippet:  snippet(text, post.Content, r.snippetLength),
		Date:     FormatDate(post.Date),
	}
	if card.External {
		card.Href = post.Id
		card.Target = "_blank"
	} else {
		card.Href = PostHash(post.Id)
	}
	return card
}

// IsExternal reports whether the post links out of the app
func (r *Renderer) IsExternal(post models.Post) bool {
	return !r.internal[post.Source]
}

// ReadTime estimates the reading time of an HTML body at the default pace
func ReadTime(content string) string {
	return readTime(PlainText(content), content, DefaultWordsPerMinute)
}

// Snippet returns the plain text preview of an HTML body
func Snippet(content string) string {
	return snippet(PlainText(content), content, DefaultSnippetLength)
}

func readTime(text, content string, wordsPerMinute int) string {
	if content == "" {
		return ""
	}
	words := len(strings.Fields(text))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

func snippet(text, content string, maxLength int) string {
	if content == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDate parses the ISO-like dates the content API emits
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a post date as "Jan 2". Missing or unparseable dates
// render as an empty string.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format("Jan 2")
}
