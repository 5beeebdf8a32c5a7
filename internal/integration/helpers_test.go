package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/config"
	"github.com/cableblog/sitesearch/internal/posts"
	"github.com/cableblog/sitesearch/internal/render"
	"github.com/cableblog/sitesearch/internal/search"
	"github.com/cableblog/sitesearch/internal/server"
)

const twoPosts = `[
  {"id": 0, "title": "Node.js and MySQL", "excerpt": "Connect to MySQL from Node.", "url": "/cableBlog/Node-and-MySQL/", "teaser": null, "categories": [], "tags": []},
  {"id": 1, "title": "Python & Flask", "excerpt": "sudo pip install flask", "url": "/cableBlog/Python-Flask/", "teaser": "/img/flask.png", "categories": ["python"], "tags": ["flask"]}
]`

const threePosts = `[
  {"id": 0, "title": "Node.js and MySQL", "excerpt": "Connect to MySQL from Node.", "url": "/cableBlog/Node-and-MySQL/", "teaser": null, "categories": [], "tags": []},
  {"id": 1, "title": "Python & Flask", "excerpt": "sudo pip install flask", "url": "/cableBlog/Python-Flask/", "teaser": "/img/flask.png", "categories": ["python"], "tags": ["flask"]},
  {"id": 2, "title": "Rust ownership", "excerpt": "Borrowing rules explained.", "url": "/cableBlog/Rust-Ownership/", "teaser": null, "categories": ["rust"], "tags": []}
]`

// site is a posts file plus the configuration pointing at it.
type site struct {
	dir   string
	posts string
	cfg   *config.Config
}

func newSite(t *testing.T, content string, yaml string) *site {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.WriteFile(config.ProjectConfigPath(dir),
		[]byte("data:\n  posts_file: "+path+"\n"+yaml), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return &site{dir: dir, posts: path, cfg: cfg}
}

func (s *site) handler(t *testing.T) *search.Handler {
	t.Helper()
	list, err := posts.Load(s.cfg.Data.PostsFile)
	require.NoError(t, err)
	c, err := search.Build(context.Background(), list, s.cfg.ToIndex(), s.cfg.Data.PostsFile)
	require.NoError(t, err)
	h, err := search.NewHandler(c, search.WithCache(s.cfg.Search.CacheSize))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func serve(t *testing.T, h *search.Handler) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(server.New(h, server.Config{}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func apiSearch(t *testing.T, base, q string) render.Document {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/search?q="+q, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var doc render.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc
}
