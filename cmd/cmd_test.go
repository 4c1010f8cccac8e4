package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"inkfeed/config"
	"inkfeed/db"
	"inkfeed/models"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormat(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	format, err := outputFormat("auto", f)
	require.NoError(t, err)
	assert.Equal(t, formatHTML, format)

	format, err = outputFormat("text", f)
	require.NoError(t, err)
	assert.Equal(t, formatText, format)

	_, err = outputFormat("yaml", f)
	assert.Error(t, err)
}

func TestWriteView(t *testing.T) {
	view := models.View{
		Status: models.ViewReady,
		Tags:   []models.TagCount{{Tag: "go", Count: 1}},
		Cards: []models.Card{{
			Post:     models.Post{Id: "1", Title: "Hello", Source: "Local Data"},
			Href:     "#/post/1",
			ReadTime: "1 min read",
		}},
	}

	var html bytes.Buffer
	require.NoError(t, writeView(&html, formatHTML, view))
	assert.Contains(t, html.String(), `<nav class="tag-list">`)
	assert.Contains(t, html.String(), "Hello")

	var text bytes.Buffer
	require.NoError(t, writeView(&text, formatText, view))
	assert.Contains(t, text.String(), "Hello")
	assert.NotContains(t, text.String(), "<nav")
}

func TestSetupLogging(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	var buf bytes.Buffer
	require.NoError(t, setupLogging(config.LogConfig{Level: "debug", Format: "json"}, &buf))
	log.WithFields(log.Fields{"post": "42"}).Debug("Loaded")
	assert.Contains(t, buf.String(), `"post":"42"`)

	assert.Error(t, setupLogging(config.LogConfig{Level: "loud"}, &buf))

	file := filepath.Join(t.TempDir(), "inkfeed.log")
	require.NoError(t, setupLogging(config.LogConfig{Level: "info", File: file}, &buf))
	log.Info("to file")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestRootAppTags(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "1", "title": "A", "tags": ["go", "web"]}, {"id": "2", "title": "B", "tags": ["go"]}]`))
	}))
	defer srv.Close()

	err := RootApp().Run([]string{"inkfeed", "--api-url", srv.URL + "/api", "tags"})
	assert.NoError(t, err)
}

func TestRootAppRejectsBadConfig(t *testing.T) {
	err := RootApp().Run([]string{"inkfeed", "--config", filepath.Join(t.TempDir(), "missing.toml"), "tags"})
	assert.Error(t, err)

	err = RootApp().Run([]string{"inkfeed", "--api-url", "ftp://example.com", "tags"})
	assert.Error(t, err)
}

func TestImportPosts(t *testing.T) {
	dir := t.TempDir()
	fixture := `[
		{"id": "1", "title": "Older", "content": "<p>old</p>", "date": "2024-01-01T00:00:00Z", "tags": ["go"]},
		{"id": "2", "title": "Newer", "content": "<p>new</p>", "date": "2024-06-01T00:00:00Z"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.json"), []byte(fixture), 0o644))

	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.Stub.Sources = []config.Source{
		{Name: "Local Data", Type: config.SourceJSON, Path: "posts.json", Enabled: true},
	}

	database := filepath.Join(dir, "stub.db")
	n, err := importPosts(context.Background(), cfg, database, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reader, err := db.NewReader(database)
	require.NoError(t, err)
	defer reader.Close()

	posts, err := reader.GetPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Newer", posts[0].Title)
	assert.Equal(t, "Local Data", posts[0].Source)
	assert.Equal(t, []string{"go"}, posts[1].Tags)
}
