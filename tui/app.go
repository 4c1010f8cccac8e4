// Package tui is the interactive terminal front end of the feed: a card list,
// the tag recommendation bar, a search input and a reset key.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkfeed/browser"
	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeTags
	modeDetail
	modeHelp
)

// DefaultFetchTimeout bounds a navigation that fetches posts
const DefaultFetchTimeout = 30 * time.Second

type App struct {
	ctrl  *feeds.Controller
	state feeds.State
	view  models.View

	// seq identifies the latest navigation; older results are dropped
	seq     int
	loading bool

	cursor   int
	scroll   int
	mode     mode
	prevHash string

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	tagBar      tagBar

	open    func(url string) error
	timeout time.Duration
	err     error
}

type RunOpts struct {
	Controller *feeds.Controller
	// Hash is the fragment to start on, "#" when empty
	Hash    string
	Timeout time.Duration
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search titles..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	hash := opts.Hash
	if hash == "" {
		hash = "#"
	}

	return &App{
		ctrl:        opts.Controller,
		state:       feeds.State{Hash: hash},
		view:        feeds.LoadingView(feeds.ResolveRoute(hash)),
		searchInput: ti,
		spinner:     sp,
		open:        browser.Open,
		timeout:     timeout,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.navigate(a.state.Hash), a.spinner.Tick)
}

// navigate runs the navigation handler off the UI loop, since it may fetch
func (a *App) navigate(hash string) tea.Cmd {
	return a.dispatch(hash, a.state, func(ctx context.Context, ctrl *feeds.Controller, st feeds.State) (feeds.State, models.View) {
		return ctrl.Navigate(ctx, st, hash)
	})
}

// reset clears posts and search and returns to all posts, fetching again
func (a *App) reset() tea.Cmd {
	a.searchInput.SetValue("")
	a.cursor = 0
	a.mode = modeNormal
	return a.dispatch("#", feeds.State{}, func(ctx context.Context, ctrl *feeds.Controller, st feeds.State) (feeds.State, models.View) {
		return ctrl.Reset(ctx, st)
	})
}

type handler func(ctx context.Context, ctrl *feeds.Controller, st feeds.State) (feeds.State, models.View)

// dispatch runs handle in a command tagged with a new sequence number
func (a *App) dispatch(hash string, st feeds.State, handle handler) tea.Cmd {
	a.seq++
	seq := a.seq
	if !st.Loaded() {
		a.loading = true
		a.view = feeds.LoadingView(feeds.ResolveRoute(hash))
	}

	ctrl := a.ctrl
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		st, view := handle(ctx, ctrl, st)
		return navigatedMsg{seq: seq, state: st, view: view}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) apply(st feeds.State, view models.View) {
	a.state = st
	a.view = view
	a.tagBar.tags = view.Tags
	a.tagBar.active = view.Route.Tag
	a.tagBar.move(0)
	if a.cursor >= len(view.Cards) {
		a.cursor = max(0, len(view.Cards)-1)
	}
}

func (a *App) selected() *models.Card {
	if a.cursor < 0 || a.cursor >= len(a.view.Cards) {
		return nil
	}
	return &a.view.Cards[a.cursor]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.err = nil
		return a.handleKey(msg)

	case navigatedMsg:
		if msg.seq != a.seq {
			return a, nil
		}
		a.loading = false
		// Keep what was typed while the fetch was running
		msg.state.Search = a.searchInput.Value()
		st, view := a.ctrl.Search(msg.state, msg.state.Search)
		a.apply(st, view)
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeTags:
		return a.handleTagKey(msg)
	case modeDetail:
		return a.handleDetailKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.view.Cards)-1 {
			a.cursor++
			a.scroll = 0
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
			a.scroll = 0
		}
		return a, nil
	case "o", "enter":
		return a, a.openSelected()
	case "/":
		a.mode = modeSearch
		return a, a.searchInput.Focus()
	case "t":
		if a.view.Status == models.ViewReady {
			a.mode = modeTags
			a.tagBar.selecting = true
		}
		return a, nil
	case "a":
		a.cursor = 0
		return a, a.navigate("#")
	case "l":
		return a, a.reset()
	case "?":
		a.mode = modeHelp
		return a, nil
	}
	return a, nil
}

// openSelected sends external posts to the browser and shows internal posts
// in the detail pane under their own route
func (a *App) openSelected() tea.Cmd {
	card := a.selected()
	if card == nil {
		return nil
	}
	if card.External {
		return a.openCmd(card.Href)
	}
	a.prevHash = a.state.Hash
	a.mode = modeDetail
	a.scroll = 0
	a.state.Hash = card.Href
	a.view.Route = feeds.ResolveRoute(card.Href)
	return nil
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "q":
		a.mode = modeNormal
		a.state.Hash = a.prevHash
		a.view.Route = feeds.ResolveRoute(a.prevHash)
		return a, nil
	case "j", "down":
		if a.scroll < len(previewLines(a.selected(), a.detailWidth(), true))-1 {
			a.scroll++
		}
	case "k", "up":
		if a.scroll > 0 {
			a.scroll--
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.search("")
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if value := a.searchInput.Value(); value != before {
		a.search(value)
	}
	return a, cmd
}

// search filters the loaded posts; it never fetches
func (a *App) search(term string) {
	a.cursor = 0
	if a.loading {
		return
	}
	st, view := a.ctrl.Search(a.state, term)
	a.apply(st, view)
}

func (a *App) handleTagKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "t":
		a.mode = modeNormal
		a.tagBar.selecting = false
		return a, nil
	case "left", "h":
		a.tagBar.move(-1)
		return a, nil
	case "right", "l":
		a.tagBar.move(1)
		return a, nil
	case "enter", " ":
		a.mode = modeNormal
		a.tagBar.selecting = false
		a.cursor = 0
		return a, a.navigate(a.tagBar.selectedHash())
	}
	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return headerStyle.Render("inkfeed")
	}
	if a.mode == modeHelp {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, helpCardStyle.Render(helpText()))
	}

	contentHeight := max(a.height-3-2, 3) // header, tag bar, status, borders

	header := a.renderHeader()

	top := a.tagBar.render(a.width)
	if a.mode == modeSearch {
		top = a.searchInput.View()
	}

	var body string
	switch {
	case a.loading || a.view.Status == models.ViewLoading:
		body = centered(a.spinner.View()+" "+feeds.LoadingMessage, a.width-2, contentHeight)
		body = paneStyle.Width(a.width - 2).Height(contentHeight).Render(body)
	case a.view.Status == models.ViewFailed:
		body = lipgloss.Place(a.width-2, contentHeight, lipgloss.Center, lipgloss.Center, errorStyle.Render(a.view.Message))
		body = paneStyle.Width(a.width - 2).Height(contentHeight).Render(body)
	case a.mode == modeDetail:
		detail := renderPreview(a.selected(), a.detailWidth(), contentHeight, a.scroll, true)
		body = paneStyle.Width(a.width - 2).Height(contentHeight).Render(detail)
	default:
		listWidth := int(float64(a.width) * 0.4)
		previewWidth := a.width - listWidth - 1
		list := renderList(a.view.Cards, a.cursor, contentHeight, listWidth-4, a.view.Message)
		preview := renderPreview(a.selected(), previewWidth-4, contentHeight, a.scroll, false)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			paneStyle.Width(listWidth-2).Height(contentHeight).Render(list),
			" ",
			paneStyle.Width(previewWidth-2).Height(contentHeight).Render(preview),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, top, body, a.renderStatus())
}

func (a *App) detailWidth() int {
	return a.width - 4
}

func (a *App) renderHeader() string {
	left := headerStyle.Render("inkfeed")
	right := headerRouteStyle.Render(routeLabel(a.view.Route) + " ")
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) renderStatus() string {
	if a.err != nil {
		return statusBarStyle.Width(a.width).Render(errorStyle.Render(a.err.Error()))
	}

	left := fmt.Sprintf("%d articles", len(a.view.Cards))
	if term := a.state.Search; term != "" {
		left += fmt.Sprintf(" · search %q", term)
	}

	var right string
	switch a.mode {
	case modeSearch:
		right = "esc clear  enter done"
	case modeTags:
		right = "←/→ choose  enter apply  esc cancel"
	case modeDetail:
		right = "esc back  j/k scroll"
	default:
		right = "/ search  t tags  a all  l reset  ? help  q quit"
	}

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 0)
	return statusBarStyle.Width(a.width).Render(left + strings.Repeat(" ", gap) + right)
}

func routeLabel(route models.Route) string {
	switch {
	case route.PostID != "":
		return "post " + route.PostID
	case route.Tag != "":
		return "#" + route.Tag
	}
	return "all posts"
}

func helpText() string {
	dim := helpDimStyle
	return headerStyle.Render("inkfeed") + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Feed") + "\n" +
		"  j/k, ↑/↓     Move through articles\n" +
		"  o, enter      Open article\n" +
		"  /             Search titles\n" +
		"  t             Choose a recommended tag\n" +
		"  a             Show all articles\n" +
		"  l             Reset and reload\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"
}

// Run starts the terminal UI and blocks until it exits
func Run(opts RunOpts) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
