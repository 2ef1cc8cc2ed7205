package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore keeps one JSON file per pair at <dir>/<base>/<candidate>.json.
// Drawing IDs are validated before use so they are safe path components.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, unavailable("file", fmt.Errorf("create store dir: %w", err))
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store root.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) recordPath(base, candidate string) string {
	return filepath.Join(s.dir, base, candidate+".json")
}

func (s *FileStore) Save(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validatePair(rec.BaseDrawingID, rec.CandidateDrawingID); err != nil {
		return Record{}, err
	}
	path := s.recordPath(rec.BaseDrawingID, rec.CandidateDrawingID)

	var existing *Record
	if old, err := readRecord(path); err == nil {
		existing = &old
	} else if !os.IsNotExist(err) {
		return Record{}, unavailable("file", err)
	}

	out, err := prepare(rec, existing, time.Now().UTC())
	if err != nil {
		return Record{}, err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("marshal alignment: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Record{}, unavailable("file", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return Record{}, unavailable("file", fmt.Errorf("write alignment file: %w", err))
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Record{}, unavailable("file", err)
	}
	return out, nil
}

func (s *FileStore) Get(_ context.Context, base, candidate string) (Record, error) {
	if err := validatePair(base, candidate); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := readRecord(s.recordPath(base, candidate))
	if os.IsNotExist(err) {
		return Record{}, notFound(base, candidate)
	}
	if err != nil {
		return Record{}, unavailable("file", err)
	}
	return rec, nil
}

func (s *FileStore) Delete(_ context.Context, base, candidate string) (bool, error) {
	if err := validatePair(base, candidate); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.recordPath(base, candidate))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("file", fmt.Errorf("remove alignment file: %w", err))
	}
	// Drop the base directory once it is empty; failure just leaves it behind.
	os.Remove(filepath.Join(s.dir, base))
	return true, nil
}

func (s *FileStore) List(_ context.Context, base string) ([]Record, error) {
	if err := validateBase(base); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.dir, base))
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, unavailable("file", err)
	}

	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := readRecord(filepath.Join(s.dir, base, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	sortByCandidate(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

var _ Store = (*FileStore)(nil)
