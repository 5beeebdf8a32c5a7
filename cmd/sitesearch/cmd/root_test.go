package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/pkg/version"
)

func TestRootCmd_ListsSubcommands(t *testing.T) {
	// Given: the root command
	cmd := NewRootCmd()

	// When: collecting subcommand names
	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}

	// Then: every surface is registered
	for _, want := range []string{"search", "tui", "serve", "mcp", "validate", "stats", "config", "logs", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"config-dir", "posts", "log-level", "debug", "profile-cpu", "profile-mem", "profile-trace"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_ProfileFlags(t *testing.T) {
	// Given: a post list and profile paths
	dir := isolate(t)
	posts := writePosts(t, dir, testPostsJSON)
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")

	// When: running a search with profiling enabled
	_, err := runCmd(t, context.Background(), dir, "",
		"--posts", posts, "--profile-cpu", cpu, "--profile-mem", mem, "search", "flask")

	// Then: both profiles are written
	require.NoError(t, err)
	for _, path := range []string{cpu, mem} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	dir := isolate(t)

	out, err := runCmd(t, context.Background(), dir, "", "--version")

	require.NoError(t, err)
	assert.Equal(t, "sitesearch version "+version.Version+"\n", out)
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	// Given: an unknown log level flag
	dir := isolate(t)

	// When: running any command that loads config
	_, err := runCmd(t, context.Background(), dir, "", "--log-level", "loud", "search", "node")

	// Then: the configuration is rejected
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestVersionCmd(t *testing.T) {
	dir := isolate(t)

	out, err := runCmd(t, context.Background(), dir, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Short()+"\n", out)

	out, err = runCmd(t, context.Background(), dir, "", "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}
