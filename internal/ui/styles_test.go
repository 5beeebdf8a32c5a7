package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorStyles_RenderVerbatim(t *testing.T) {
	// Given: no-color styles
	styles := NoColorStyles()

	// Then: every style renders its input unchanged
	for name, s := range map[string]func(...string) string{
		"header":  styles.Header.Render,
		"count":   styles.Count.Render,
		"title":   styles.Title.Render,
		"url":     styles.URL.Render,
		"teaser":  styles.Teaser.Render,
		"excerpt": styles.Excerpt.Render,
		"error":   styles.Error.Render,
	} {
		assert.Equal(t, "Jekyll", s("Jekyll"), name)
	}
}

func TestDefaultStyles_KeepText(t *testing.T) {
	// Given: default styles
	styles := DefaultStyles()

	// When: rendering a title
	rendered := styles.Title.Render("Welcome to Jekyll!")

	// Then: the text survives styling
	assert.Contains(t, rendered, "Welcome to Jekyll!")
}

func TestGetStyles(t *testing.T) {
	assert.Equal(t, "x", GetStyles(true).Count.Render("x"))
	assert.Contains(t, GetStyles(false).Count.Render("x"), "x")
}
