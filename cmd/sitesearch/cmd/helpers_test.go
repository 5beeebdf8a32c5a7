package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPostsJSON = `[
  {"id": 0, "title": "Node.js and MySQL", "excerpt": "Connect to MySQL from Node.", "url": "/cableBlog/Node-and-MySQL/", "teaser": null, "categories": [], "tags": []},
  {"id": 1, "title": "Python & Flask", "excerpt": "sudo pip install flask", "url": "/cableBlog/Python-Flask/", "teaser": "/img/flask.png", "categories": ["python"], "tags": ["flask"]}
]`

// isolate points every per-user path at a fresh temp directory and returns
// a config directory for the command under test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")
	dir := filepath.Join(home, "site")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func writePosts(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, ctx context.Context, dir string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config-dir", dir}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}
