package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/search"
)

func TestRunPlain_OneQueryPerLine(t *testing.T) {
	// Given: two queries, the second one empty
	h := newTestHandler(t)
	var out bytes.Buffer
	cfg := NewConfig(&out, WithInput(strings.NewReader("header\r\n\n")))

	// When: running line mode
	err := RunPlain(context.Background(), h, cfg)

	// Then: each line gets its own listing, blank-line separated
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "1 Result(s) found\n"))
	assert.Contains(t, out.String(), "1. Layout: Header Image")
	assert.Contains(t, out.String(), "teaser: /assets/images/teaser.jpg")
	assert.True(t, strings.HasSuffix(out.String(), "\n\n0 Result(s) found\n"))
}

func TestRunPlain_EmptyInput(t *testing.T) {
	h := newTestHandler(t)
	var out bytes.Buffer

	err := RunPlain(context.Background(), h, NewConfig(&out, WithInput(strings.NewReader(""))))

	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunPlain_NilInput(t *testing.T) {
	cfg := NewConfig(io.Discard, WithInput(nil))
	cfg.Input = nil

	err := RunPlain(context.Background(), newTestHandler(t), cfg)

	assert.Error(t, err)
}

func TestRunPlain_CancelledContextStops(t *testing.T) {
	// Given: a cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	// When: running with pending input
	err := RunPlain(ctx, newTestHandler(t), NewConfig(&out, WithInput(strings.NewReader("jekyll\n"))))

	// Then: nothing is queried
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

type failingSearcher struct{}

func (failingSearcher) Query(context.Context, string) (*search.Results, error) {
	return nil, errors.New("index closed")
}

func (failingSearcher) Keystroke(context.Context, string, search.Renderer, io.Writer) error {
	return errors.New("index closed")
}

func TestRunPlain_QueryErrorStops(t *testing.T) {
	err := RunPlain(context.Background(), failingSearcher{},
		NewConfig(io.Discard, WithInput(strings.NewReader("a\nb\n"))))

	require.Error(t, err)
	assert.Contains(t, err.Error(), `query "a"`)
}
