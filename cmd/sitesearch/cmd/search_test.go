package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/cableblog/sitesearch/internal/errors"
)

func TestSearchCmd_BuiltinPostsText(t *testing.T) {
	// Given: no post file configured
	dir := isolate(t)

	// When: searching the built-in posts
	out, err := runCmd(t, context.Background(), dir, "", "search", "quake", "--format", "text")

	// Then: the one matching post is listed
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1 Result(s) found\n"))
	assert.Contains(t, out, "Quake III and the Fast Inverse Square Root")
}

func TestSearchCmd_DefaultFormatIsHTML(t *testing.T) {
	dir := isolate(t)
	posts := writePosts(t, dir, testPostsJSON)

	out, err := runCmd(t, context.Background(), dir, "", "--posts", posts, "search", "flask")

	require.NoError(t, err)
	assert.Contains(t, out, `<p class="results__found">1 Result(s) found</p>`)
	assert.Contains(t, out, `href="/cableBlog/Python-Flask/"`)
	assert.Contains(t, out, "Python &amp; Flask")
}

func TestSearchCmd_JSON(t *testing.T) {
	// Given: a post file and a partially typed query
	dir := isolate(t)
	posts := writePosts(t, dir, testPostsJSON)

	// When: searching with JSON output
	out, err := runCmd(t, context.Background(), dir, "", "--posts", posts, "search", "mysq", "--format", "json")

	// Then: the document lists the prefix match
	require.NoError(t, err)
	var doc struct {
		Query   string `json:"query"`
		Count   int    `json:"count"`
		Results []struct {
			Title string `json:"title"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "mysq", doc.Query)
	assert.Equal(t, 1, doc.Count)
	assert.Equal(t, "Node.js and MySQL", doc.Results[0].Title)
}

func TestSearchCmd_EmptyQuery(t *testing.T) {
	dir := isolate(t)

	out, err := runCmd(t, context.Background(), dir, "", "search", "--format", "text")

	require.NoError(t, err)
	assert.Equal(t, "0 Result(s) found\n", out)
}

func TestSearchCmd_UnknownFormat(t *testing.T) {
	dir := isolate(t)

	_, err := runCmd(t, context.Background(), dir, "", "search", "node", "--format", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestSearchCmd_MalformedPostFile(t *testing.T) {
	// Given: a record without a title
	dir := isolate(t)
	posts := writePosts(t, dir, `[{"id": 0, "excerpt": "x", "url": "/x/"}]`)

	// When: searching it
	_, err := runCmd(t, context.Background(), dir, "", "--posts", posts, "search", "x")

	// Then: the malformed record is reported
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeMalformedRecord, serrors.GetCode(err))
}
