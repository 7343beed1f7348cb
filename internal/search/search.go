// Package search defines the web search the recommendation pipeline relies on
// for review snippets, review links and dish photos.
package search

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("search service not configured")

type Result struct {
	Title   string
	Snippet string
	Link    string
}

type Image struct {
	ImageURL  string
	SourceURL string
}

type Service interface {
	// Web returns organic results; an answer box, when present, comes first.
	Web(ctx context.Context, query string, limit int) ([]Result, error)
	Images(ctx context.Context, query string, limit int) ([]Image, error)
}
