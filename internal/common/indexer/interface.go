package indexer

import (
	"context"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Indexer defines the interface for posting storage backends
type Indexer interface {
	// BulkIndex upserts multiple postings at once
	BulkIndex(ctx context.Context, postings []*domain.Posting) error
}

// StatsStore persists computed aggregate statistics
type StatsStore interface {
	SaveStats(ctx context.Context, stats *domain.AggregateStats) error
}
