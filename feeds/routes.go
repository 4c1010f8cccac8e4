package feeds

import (
	"net/url"
	"strings"

	"inkfeed/models"
)

const (
	tagRoutePrefix  = "#/tag/"
	postRoutePrefix = "#/post/"
)

// ResolveRoute parses a URL fragment. Only "#/tag/<name>" selects a tag, every
// other fragment (including "" and "#") shows all posts. "#/post/<id>" keeps
// showing all posts but records the post id for adapters with a detail view.
func ResolveRoute(hash string) models.Route {
	switch {
	case strings.HasPrefix(hash, tagRoutePrefix):
		return models.Route{Tag: decodeSegment(strings.TrimPrefix(hash, tagRoutePrefix))}
	case strings.HasPrefix(hash, postRoutePrefix):
		// Post ids are often URLs, so the whole remainder is the id
		return models.Route{PostID: decodeComponent(strings.TrimPrefix(hash, postRoutePrefix))}
	}
	return models.Route{}
}

// TagHash builds the fragment that selects tag
func TagHash(tag string) string {
	return tagRoutePrefix + EncodeURIComponent(tag)
}

// PostHash builds the in-app fragment for an internal post
func PostHash(id string) string {
	return postRoutePrefix + EncodeURIComponent(id)
}

// EncodeURIComponent escapes s so that it can be used as a single fragment segment
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// decodeSegment decodes the first path segment of s
func decodeSegment(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return decodeComponent(s)
}

// decodeComponent falls back to the raw text when s is not valid percent-encoding
func decodeComponent(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
