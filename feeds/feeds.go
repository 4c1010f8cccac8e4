// Package feeds holds the feed controller: loading posts, ranking tags, routing,
// searching and rendering cards.
package feeds

import (
	"context"
	"slices"
	"time"

	"inkfeed/models"
	"inkfeed/query"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Phase is the load state of the post list
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// State is the application state owned by an adapter and threaded through
// every handler. The zero value is an empty state showing all posts.
type State struct {
	Phase  Phase
	Posts  []models.Post
	Hash   string
	Search string
	Err    error
}

// Loaded reports whether st holds posts. An empty list counts as not loaded,
// so the next navigation fetches again.
func (st State) Loaded() bool {
	return st.Phase == PhaseLoaded && len(st.Posts) > 0
}

// Source supplies the post collection
type Source interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
}

// SourceFunc adapts a function to a Source
type SourceFunc func(ctx context.Context) ([]models.Post, error)

func (f SourceFunc) FetchPosts(ctx context.Context) ([]models.Post, error) {
	return f(ctx)
}

// Options configures a Controller
type Options struct {
	Render  RenderOptions
	TopTags int
	Ranking query.RankingStrategy
}

// Controller reacts to navigation events. It keeps no post state of its own,
// only the single-flight group that merges concurrent fetches.
type Controller struct {
	source   Source
	renderer *Renderer
	ranking  query.RankingStrategy
	topTags  int
	group    singleflight.Group
}

func NewController(source Source, opts Options) *Controller {
	c := &Controller{
		source:   source,
		renderer: NewRenderer(opts.Render),
		ranking:  opts.Ranking,
		topTags:  opts.TopTags,
	}
	if c.ranking == nil {
		c.ranking = &FrequencyRanking{}
	}
	if c.topTags <= 0 {
		c.topTags = DefaultTopTags
	}
	return c
}

const loadKey = "posts"

// Load fetches the post list unless posts are already loaded. A failed or
// empty fetch leaves the list empty so the next call tries again. Concurrent
// calls share a single request; a caller whose ctx ends stops waiting without
// cancelling the request for the others.
func (c *Controller) Load(ctx context.Context, st State) State {
	if st.Loaded() {
		return st
	}

	st.Phase = PhaseLoading
	start := time.Now()

	ch := c.group.DoChan(loadKey, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithDeadline(fetchCtx, deadline)
			defer cancel()
		}
		return c.source.FetchPosts(fetchCtx)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}

	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		log.WithFields(log.Fields{
			"error":  err,
			"shared": shared,
		}).Warn("Could not load posts")

		st.Phase = PhaseError
		st.Posts = nil
		st.Err = err
		return st
	}

	posts, _ := v.([]models.Post)
	st.Phase = PhaseLoaded
	st.Posts = slices.Clone(posts)
	st.Err = nil

	log.WithFields(log.Fields{
		"count":   len(st.Posts),
		"shared":  shared,
		"latency": time.Since(start),
	}).Info("Loaded posts")

	return st
}

// Navigate handles a fragment change: it loads posts when needed and renders
// the route for the new fragment.
func (c *Controller) Navigate(ctx context.Context, st State, hash string) (State, models.View) {
	st.Hash = hash
	st = c.Load(ctx, st)
	return st, c.View(st)
}

// Search handles a change of the search input. It never fetches.
func (c *Controller) Search(st State, term string) (State, models.View) {
	st.Search = term
	return st, c.View(st)
}

// Reset drops the loaded posts, clears the search and navigates to all posts,
// which fetches the collection again.
func (c *Controller) Reset(ctx context.Context, st State) (State, models.View) {
	return c.Navigate(ctx, State{}, "#")
}

// View renders st without side effects
func (c *Controller) View(st State) models.View {
	route := ResolveRoute(st.Hash)

	switch st.Phase {
	case PhaseLoading:
		return LoadingView(route)
	case PhaseError:
		return models.View{Status: models.ViewFailed, Message: FailureMessage, Route: route}
	}

	view := models.View{
		Status: models.ViewReady,
		Cards:  c.renderer.Render(Route(st.Hash, st.Posts, st.Search)),
		Route:  route,
	}
	if len(st.Posts) > 0 {
		view.Tags = c.ranking.Rank(st.Posts, c.topTags)
	}
	if len(view.Cards) == 0 {
		view.Message = NoArticlesMessage
	}
	return view
}

// Card renders a single post the way the feed shows it
func (c *Controller) Card(post models.Post) models.Card {
	return c.renderer.Card(post)
}

// LoadingView is shown while a fetch is in flight
func LoadingView(route models.Route) models.View {
	return models.View{Status: models.ViewLoading, Message: LoadingMessage, Route: route}
}
