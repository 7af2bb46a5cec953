package collector

import (
	"context"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// PageHandler is a callback for processing postings from each result page
type PageHandler func(postings []*domain.RawPosting) error

// Collector is the common interface for posting sources
type Collector interface {
	// Collect fetches all postings from the source
	Collect(ctx context.Context) ([]*domain.RawPosting, error)
	// CollectWithCallback fetches page by page and calls handler after each page
	CollectWithCallback(ctx context.Context, handler PageHandler) error
	// Source returns the source identifier
	Source() domain.PostingSource
}
