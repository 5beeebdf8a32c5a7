package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_PipedInputUsesLineMode(t *testing.T) {
	// Given: two queries on stdin, which is not a terminal
	dir := isolate(t)

	// When: running the search box
	out, err := runCmd(t, context.Background(), dir, "quake\nflask\n", "tui")

	// Then: each line is answered in text form
	require.NoError(t, err)
	blocks := strings.Split(out, "\n\n")
	assert.True(t, strings.HasPrefix(out, "1 Result(s) found\n"))
	assert.Contains(t, out, "Quake III and the Fast Inverse Square Root")
	assert.Contains(t, out, "Python & Flask")
	assert.GreaterOrEqual(t, len(blocks), 2)
}

func TestTUICmd_InvalidDebounce(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SITESEARCH_DEBOUNCE", "soon")

	_, err := runCmd(t, context.Background(), dir, "", "tui")

	assert.Error(t, err)
}
