package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"inkfeed/feeds"
	"inkfeed/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	calls atomic.Int32
	err   error
}

func (s *stubSource) FetchPosts(ctx context.Context) ([]models.Post, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []models.Post{
		{Id: "a", Title: "Alpha", Content: "<p>first post</p>", Source: "Local Data", Tags: []string{"x"}},
		{Id: "https://example.com/b", Title: "Beta", Content: "<p>second</p>", Source: "External Blog", Tags: []string{"x", "y"}},
	}, nil
}

func newTestApp(t *testing.T, src *stubSource) *App {
	t.Helper()
	app := NewApp(RunOpts{Controller: feeds.NewController(src, feeds.Options{})})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	run(app, app.navigate("#"))
	return app
}

// run executes cmd and feeds its message back into the app
func run(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		app.Update(msg)
	}
}

func press(app *App, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := app.Update(msg)
	return cmd
}

func titles(view models.View) []string {
	out := []string{}
	for _, c := range view.Cards {
		out = append(out, c.Post.Title)
	}
	return out
}

func TestInitialLoad(t *testing.T) {
	src := &stubSource{}
	app := newTestApp(t, src)

	assert.False(t, app.loading)
	assert.Equal(t, []string{"Alpha", "Beta"}, titles(app.view))
	assert.Equal(t, []models.TagCount{{Tag: "x", Count: 2}, {Tag: "y", Count: 1}}, app.tagBar.tags)
	assert.Contains(t, app.View(), "Alpha")
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestSelectTag(t *testing.T) {
	src := &stubSource{}
	app := newTestApp(t, src)

	press(app, "t")
	require.Equal(t, modeTags, app.mode)
	press(app, "right")
	press(app, "right")
	run(app, press(app, "enter"))

	assert.Equal(t, "#/tag/y", app.state.Hash)
	assert.Equal(t, []string{"Beta"}, titles(app.view))
	assert.Equal(t, "y", app.tagBar.active)

	run(app, press(app, "a"))
	assert.Equal(t, []string{"Alpha", "Beta"}, titles(app.view))
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestSearchDoesNotFetch(t *testing.T) {
	src := &stubSource{}
	app := newTestApp(t, src)

	press(app, "/")
	require.Equal(t, modeSearch, app.mode)
	for _, r := range "BET" {
		press(app, string(r))
	}

	assert.Equal(t, "BET", app.state.Search)
	assert.Equal(t, []string{"Beta"}, titles(app.view))

	press(app, "esc")
	assert.Equal(t, modeNormal, app.mode)
	assert.Empty(t, app.state.Search)
	assert.Len(t, app.view.Cards, 2)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestResetRefetches(t *testing.T) {
	src := &stubSource{}
	app := newTestApp(t, src)

	press(app, "/")
	press(app, "a")
	press(app, "enter")

	run(app, press(app, "l"))

	assert.EqualValues(t, 2, src.calls.Load())
	assert.Empty(t, app.searchInput.Value())
	assert.Equal(t, "#", app.state.Hash)
	assert.Len(t, app.view.Cards, 2)
}

func TestResetLeavesTagRoute(t *testing.T) {
	src := &stubSource{}
	app := newTestApp(t, src)

	run(app, app.navigate("#/tag/y"))
	require.Equal(t, "y", app.tagBar.active)

	cmd := press(app, "l")
	assert.True(t, app.loading)
	run(app, cmd)

	assert.False(t, app.loading)
	assert.Equal(t, "#", app.state.Hash)
	assert.Empty(t, app.tagBar.active)
	assert.Len(t, app.view.Cards, 2)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestDetailScrollStopsAtLastLine(t *testing.T) {
	app := newTestApp(t, &stubSource{})
	press(app, "enter")
	require.Equal(t, modeDetail, app.mode)

	last := len(previewLines(app.selected(), app.detailWidth(), true)) - 1
	for i := 0; i < last+20; i++ {
		press(app, "j")
	}
	assert.Equal(t, last, app.scroll)
	assert.Contains(t, app.View(), "Read more")

	press(app, "k")
	assert.Equal(t, last-1, app.scroll)
}

func TestOpenCards(t *testing.T) {
	app := newTestApp(t, &stubSource{})
	var opened []string
	app.open = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	// Internal posts open in the detail pane
	assert.Nil(t, press(app, "enter"))
	assert.Equal(t, modeDetail, app.mode)
	assert.Equal(t, "#/post/a", app.state.Hash)
	assert.Equal(t, "a", app.view.Route.PostID)
	assert.Contains(t, app.View(), "first post")

	press(app, "esc")
	assert.Equal(t, modeNormal, app.mode)
	assert.Equal(t, "#", app.state.Hash)

	// External posts go to the browser
	press(app, "j")
	run(app, press(app, "enter"))
	assert.Equal(t, []string{"https://example.com/b"}, opened)
	assert.Equal(t, modeNormal, app.mode)
}

func TestOpenError(t *testing.T) {
	app := newTestApp(t, &stubSource{})
	app.open = func(string) error { return errors.New("no browser") }

	press(app, "j")
	run(app, press(app, "enter"))
	assert.EqualError(t, app.err, "no browser")
	assert.Contains(t, app.View(), "no browser")
}

func TestFailureView(t *testing.T) {
	src := &stubSource{err: errors.New("status 500")}
	app := newTestApp(t, src)

	assert.Equal(t, models.ViewFailed, app.view.Status)
	assert.Empty(t, app.view.Cards)
	assert.Contains(t, app.View(), feeds.FailureMessage)

	// The next navigation tries again
	src.err = nil
	run(app, press(app, "a"))
	assert.Equal(t, models.ViewReady, app.view.Status)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestStaleNavigationIsDropped(t *testing.T) {
	app := newTestApp(t, &stubSource{})

	stale := app.navigate("#/tag/y")
	run(app, app.navigate("#/tag/x"))
	run(app, stale)

	assert.Equal(t, "#/tag/x", app.state.Hash)
	assert.Len(t, app.view.Cards, 2)
}

func TestTagBar(t *testing.T) {
	bar := tagBar{tags: []models.TagCount{{Tag: "go", Count: 3}, {Tag: "machine learning", Count: 1}}}

	assert.Equal(t, "#", bar.selectedHash())
	bar.move(5)
	assert.Equal(t, 2, bar.cursor)
	assert.Equal(t, "#/tag/machine%20learning", bar.selectedHash())
	bar.move(-10)
	assert.Equal(t, 0, bar.cursor)

	out := bar.render(200)
	assert.Contains(t, out, "All")
	assert.Contains(t, out, "#go 3")
}

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"test", 0, ""},
		{"日本語テスト", 5, "日本..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateStr(tt.input, tt.n))
	}
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "all posts", routeLabel(models.Route{}))
	assert.Equal(t, "#go", routeLabel(models.Route{Tag: "go"}))
	assert.Equal(t, "post 9", routeLabel(models.Route{PostID: "9"}))
}

func TestRenderListEmpty(t *testing.T) {
	out := renderList(nil, 0, 5, 40, feeds.NoArticlesMessage)
	assert.True(t, strings.Contains(out, feeds.NoArticlesMessage))
}
