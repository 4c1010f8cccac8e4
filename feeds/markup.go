package feeds

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"inkfeed/models"
)

var markupFuncs = template.FuncMap{
	"tagHref": TagHash,
}

var feedTemplate = template.Must(template.New("feed").Funcs(markupFuncs).Parse(`
{{- if eq .Status.String "loading" -}}
<div class="loader">{{ .Message }}</div>
{{- else if eq .Status.String "failed" -}}
<p>{{ .Message }}</p>
{{- else if not .Cards -}}
<p>{{ .Message }}</p>
{{- else -}}
{{- range .Cards }}
<div class="post-card">
    <div class="post-card-content">
        <div class="post-card-source">{{ .Post.Source }}</div>
        <a href="{{ .Href }}"{{ if .External }} target="_blank" rel="noopener noreferrer"{{ end }}>
            <h2>{{ .Post.Title }}</h2>
            <p class="post-snippet">{{ .Snippet }}</p>
        </a>
        <div class="post-meta">
            <span>{{ .Date }}</span>
            <span>{{ .ReadTime }}</span>
        </div>
    </div>
    <img src="{{ .Post.ImageUrl }}" alt="{{ .Post.Title }}" class="post-card-image">
</div>
{{- end }}
{{- end }}`))

var tagsTemplate = template.Must(template.New("tags").Funcs(markupFuncs).Parse(
	`{{ range . }}<a href="{{ tagHref .Tag }}" class="tag-link">{{ .Tag }}</a>{{ end }}`,
))

// WriteHTML writes the feed container markup for view
func WriteHTML(w io.Writer, view models.View) error {
	if err := feedTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("rendering feed markup: %w", err)
	}
	return nil
}

// RenderHTML returns the feed container markup for view
func RenderHTML(view models.View) (string, error) {
	var b strings.Builder
	if err := WriteHTML(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderTagsHTML returns the tag widget markup
func RenderTagsHTML(tags []models.TagCount) (string, error) {
	var b strings.Builder
	if err := tagsTemplate.Execute(&b, tags); err != nil {
		return "", fmt.Errorf("rendering tag markup: %w", err)
	}
	return b.String(), nil
}

// WriteText writes a plain text listing of view, one block per card
func WriteText(w io.Writer, view models.View) error {
	if view.Status != models.ViewReady || len(view.Cards) == 0 {
		_, err := fmt.Fprintln(w, view.Message)
		return err
	}
	for _, card := range view.Cards {
		meta := strings.Join(nonEmpty(card.Post.Source, card.Date, card.ReadTime), " · ")
		link := card.Href
		if card.External {
			link += " (external)"
		}
		if _, err := fmt.Fprintf(w, "%s\n  %s\n  %s\n  %s\n\n", card.Post.Title, meta, card.Snippet, link); err != nil {
			return err
		}
	}
	return nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
