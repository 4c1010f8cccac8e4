package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkfeed/content"
	"inkfeed/db"
	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	posts []models.Post
	err   error
}

func (s *fakeStore) GetPosts(ctx context.Context) ([]models.Post, error) {
	return s.posts, s.err
}

func (s *fakeStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.posts {
		if p.Id == id {
			return &p, nil
		}
	}
	return nil, db.ErrPostNotFound
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	return len(s.posts), s.err
}

func storePosts() []models.Post {
	return []models.Post{
		{Id: "42", Title: "Local note", Source: "Local Data", Tags: []string{"x"}},
		{Id: "https://wire.example.com/a", Title: "Wire story", Source: "Wire", Tags: []string{"x", "y"}},
	}
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestGetContent(t *testing.T) {
	app := Server(&ServerConfig{Reader: &fakeStore{posts: storePosts()}})

	resp, body := get(t, app, "/api/content")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var posts []models.Post
	require.NoError(t, json.Unmarshal(body, &posts))
	assert.Equal(t, storePosts(), posts)
}

func TestGetSinglePost(t *testing.T) {
	app := Server(&ServerConfig{Reader: &fakeStore{posts: storePosts()}})

	tests := []struct {
		name   string
		target string
		status int
		title  string
	}{
		{name: "internal id", target: "/api/content/42", status: http.StatusOK, title: "Local note"},
		{name: "escaped url id", target: "/api/content/" + url.PathEscape("https://wire.example.com/a"), status: http.StatusOK, title: "Wire story"},
		{name: "missing", target: "/api/content/404", status: http.StatusNotFound},
		{name: "empty id", target: "/api/content/", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, app, tt.target)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.title != "" {
				var post models.Post
				require.NoError(t, json.Unmarshal(body, &post))
				assert.Equal(t, tt.title, post.Title)
			}
			if tt.status == http.StatusNotFound {
				assert.JSONEq(t, `{"error": "Post not found"}`, string(body))
			}
		})
	}
}

func TestForcedFailure(t *testing.T) {
	app := Server(&ServerConfig{Reader: &fakeStore{posts: storePosts()}, FailStatus: http.StatusInternalServerError})

	resp, _ := get(t, app, "/api/content")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = get(t, app, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStoreErrors(t *testing.T) {
	app := Server(&ServerConfig{Reader: &fakeStore{err: errors.New("disk on fire")}})

	resp, _ := get(t, app, "/api/content")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = get(t, app, "/api/content/42")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = get(t, app, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	app := Server(&ServerConfig{Reader: &fakeStore{posts: storePosts()}})

	resp, body := get(t, app, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status": "ok", "posts": 2}`, string(body))

	get(t, app, "/api/content")
	resp, body = get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "inkfeed_stub_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	app := Server(&ServerConfig{Reader: &fakeStore{}})

	resp, _ := get(t, app, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	app := Server(&ServerConfig{Reader: &fakeStore{}, AllowOrigins: "https://inkfeed.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/content", nil)
	req.Header.Set("Origin", "https://inkfeed.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://inkfeed.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

// serve runs app on a loopback port and returns the API base URL
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })
	return "http://" + ln.Addr().String() + "/api"
}

func TestClientAgainstStub(t *testing.T) {
	base := serve(t, Server(&ServerConfig{Reader: &fakeStore{posts: storePosts()}}))
	client := content.NewClient(base)
	ctx := context.Background()

	posts, err := client.FetchPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, storePosts(), posts)

	post, err := client.FetchPost(ctx, "https://wire.example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "Wire story", post.Title)

	_, err = client.FetchPost(ctx, "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)

	ctrl := feeds.NewController(client, feeds.Options{})
	_, view := ctrl.Navigate(ctx, feeds.State{}, "#/tag/y")
	require.Len(t, view.Cards, 1)
	assert.True(t, view.Cards[0].External)
	assert.Equal(t, "https://wire.example.com/a", view.Cards[0].Href)
}

func TestClientAgainstFailingStub(t *testing.T) {
	base := serve(t, Server(&ServerConfig{Reader: &fakeStore{posts: storePosts()}, FailStatus: http.StatusBadGateway}))

	ctrl := feeds.NewController(content.NewClient(base), feeds.Options{})
	st, view := ctrl.Navigate(context.Background(), feeds.State{}, "#")

	assert.Equal(t, feeds.PhaseError, st.Phase)
	assert.Equal(t, feeds.FailureMessage, view.Message)
	assert.True(t, strings.Contains(st.Err.Error(), "502"))
}
