// Package dedup gates records on previously seen record identifiers.
package dedup

import "context"

// Set admits each record identifier at most once per set lifetime.
// Admit returns true and records the id if it was unseen, false otherwise.
type Set interface {
	Admit(ctx context.Context, recordID string) (bool, error)
}

// MemorySet is the run-scoped seen-id set: initialized empty at run start,
// grows monotonically, discarded at run end. A run processes a bounded
// batch, so there is no eviction. Not safe for concurrent use; the run loop
// is single-threaded and owns the set exclusively. If record processing is
// ever parallelized, Admit must become an atomic check-and-insert.
type MemorySet struct {
	seen map[string]struct{}
}

// NewMemorySet creates an empty in-memory seen-id set.
func NewMemorySet() *MemorySet {
	return &MemorySet{seen: make(map[string]struct{})}
}

// Admit implements Set.
func (s *MemorySet) Admit(_ context.Context, recordID string) (bool, error) {
	if _, ok := s.seen[recordID]; ok {
		return false, nil
	}
	s.seen[recordID] = struct{}{}
	return true, nil
}

// Len returns the number of admitted identifiers.
func (s *MemorySet) Len() int {
	return len(s.seen)
}
