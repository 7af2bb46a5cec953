package indexer

import (
	"context"
	"fmt"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Multi fans out to several backends. All backends receive every batch; the
// first error is returned after the remaining backends were still attempted.
type Multi struct {
	backends []Indexer
}

// NewMulti creates a fan-out indexer
func NewMulti(backends ...Indexer) *Multi {
	return &Multi{backends: backends}
}

// BulkIndex upserts the batch into every backend
func (m *Multi) BulkIndex(ctx context.Context, postings []*domain.Posting) error {
	var firstErr error
	for _, backend := range m.backends {
		if err := backend.BulkIndex(ctx, postings); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("bulk index: %w", err)
		}
	}
	return firstErr
}
