package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type pairKey struct{ base, candidate string }

// MemoryStore keeps records in a map. Data is lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[pairKey]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[pairKey]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{rec.BaseDrawingID, rec.CandidateDrawingID}
	var existing *Record
	if old, ok := s.records[key]; ok {
		existing = &old
	}
	out, err := prepare(rec, existing, time.Now().UTC())
	if err != nil {
		return Record{}, err
	}
	s.records[key] = out
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, base, candidate string) (Record, error) {
	if err := validatePair(base, candidate); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[pairKey{base, candidate}]
	if !ok {
		return Record{}, notFound(base, candidate)
	}
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, base, candidate string) (bool, error) {
	if err := validatePair(base, candidate); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{base, candidate}
	_, ok := s.records[key]
	delete(s.records, key)
	return ok, nil
}

func (s *MemoryStore) List(_ context.Context, base string) ([]Record, error) {
	if err := validateBase(base); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Record{}
	for k, rec := range s.records {
		if k.base == base {
			out = append(out, rec)
		}
	}
	sortByCandidate(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func sortByCandidate(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CandidateDrawingID < recs[j].CandidateDrawingID
	})
}

var _ Store = (*MemoryStore)(nil)
