// Package configs provides the files embedded into the sitesearch binary:
// the configuration template written by `sitesearch config init`, and the
// default post list indexed when no post file is configured.
//
// To modify them, edit the files in this directory and rebuild.
package configs

import (
	_ "embed"

	"github.com/cableblog/sitesearch/internal/posts"
)

// ConfigTemplate is the commented configuration template.
// Created by: `sitesearch config init` at .sitesearch.yaml
//
//go:embed config.example.yaml
var ConfigTemplate string

// postsYAML is the post list of the original blog build.
//
//go:embed posts.yaml
var postsYAML []byte

// DefaultPosts decodes the embedded post list.
func DefaultPosts() ([]*posts.Post, error) {
	return posts.Decode(postsYAML, posts.FormatYAML)
}
