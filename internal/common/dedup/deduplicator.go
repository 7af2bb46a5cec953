// Package dedup prevents re-processing of postings already collected in
// prior runs. The persistent seen-set is loaded once at pipeline start; a
// transient batch set catches identifiers appearing twice in one input batch.
package dedup

import (
	"context"
	"fmt"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Store is the persistent seen-set collaborator. The core only needs one
// full read at startup and incremental writes afterward.
type Store interface {
	// LoadSeen returns every external identifier persisted by prior runs
	LoadSeen(ctx context.Context) (map[string]struct{}, error)
	// MarkSeen persists an identifier
	MarkSeen(ctx context.Context, id string) error
}

// Deduplicator tracks seen posting identifiers across and within runs
type Deduplicator struct {
	store Store
	seen  map[string]struct{} // persisted before this run
	batch map[string]struct{} // marked during this run
}

// NewDeduplicator loads the persistent seen-set. A load failure is fatal:
// running with an empty set would treat every posting as new and mass-insert
// duplicates, so the run must abort instead.
func NewDeduplicator(ctx context.Context, store Store) (*Deduplicator, error) {
	seen, err := store.LoadSeen(ctx)
	if err != nil {
		return nil, &domain.StateLoadError{Err: err}
	}
	if seen == nil {
		seen = make(map[string]struct{})
	}
	return &Deduplicator{
		store: store,
		seen:  seen,
		batch: make(map[string]struct{}),
	}, nil
}

// IsNew reports whether an identifier has been seen neither in a prior run
// nor earlier in the current one. The batch set is checked first so a
// doubled identifier within one batch is processed exactly once.
func (d *Deduplicator) IsNew(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := d.batch[id]; ok {
		return false
	}
	_, ok := d.seen[id]
	return !ok
}

// MarkSeen records an identifier in the current run and writes it through to
// the persistent store. After MarkSeen, IsNew returns false for the same
// identifier in this run and in every later run.
func (d *Deduplicator) MarkSeen(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("mark seen: empty id")
	}
	d.batch[id] = struct{}{}
	if err := d.store.MarkSeen(ctx, id); err != nil {
		return fmt.Errorf("persist seen id %s: %w", id, err)
	}
	return nil
}

// SeenCount returns the number of identifiers known before this run.
func (d *Deduplicator) SeenCount() int {
	return len(d.seen)
}
