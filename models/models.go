package models

// Post is one aggregated article as served by the content API
type Post struct {
	Id       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Date     string   `json:"date"`
	ImageUrl string   `json:"imageUrl"`
	Source   string   `json:"source"`
	Tags     []string `json:"tags"`
}

// TagList returns the post tags, never nil
func (p Post) TagList() []string {
	if p.Tags == nil {
		return []string{}
	}
	return p.Tags
}

// HasTag reports whether the post carries the exact tag
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagCount is one entry of the tag ranking
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Route is the navigation state derived from a URL fragment.
// An empty Tag means all posts are shown.
type Route struct {
	Tag    string
	PostID string
}

// IsAll reports whether the route applies no tag filter
func (r Route) IsAll() bool {
	return r.Tag == ""
}

// Card is a post prepared for display in the feed
type Card struct {
	Post     Post
	Href     string
	External bool
	Target   string
	ReadTime string
	Snippet  string
	Date     string
}

// ViewStatus tells an adapter what the feed container should show
type ViewStatus int

const (
	ViewLoading ViewStatus = iota
	ViewFailed
	ViewReady
)

func (s ViewStatus) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewFailed:
		return "failed"
	case ViewReady:
		return "ready"
	}
	return "unknown"
}

// View is everything an adapter needs to draw the feed and the tag widget
type View struct {
	Status  ViewStatus
	Message string
	Cards   []Card
	Tags    []TagCount
	Route   Route
}

// Empty reports whether a ready view has no cards to show
func (v View) Empty() bool {
	return v.Status == ViewReady && len(v.Cards) == 0
}
