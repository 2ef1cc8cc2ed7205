package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/errors"
)

// Registry is a goroutine-safe set of sessions.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	ttl       time.Duration
	tolerance float64
	now       func() time.Time
}

// NewRegistry returns an empty registry. ttl <= 0 selects DefaultTTL;
// tolerance is handed to each new controller.
func NewRegistry(ttl time.Duration, tolerance float64) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// TTL returns the idle lifetime of sessions.
func (r *Registry) TTL() time.Duration { return r.ttl }

// Create starts an idle session for the given drawing pair.
func (r *Registry) Create(base, candidate string) Info {
	now := r.now()
	s := &Session{
		ID:                 uuid.NewString(),
		BaseDrawingID:      base,
		CandidateDrawingID: candidate,
		Controller:         alignment.New(r.tolerance),
		CreatedAt:          now,
		ExpiresAt:          now.Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s.Info()
}

// With runs fn with exclusive access to session id and extends its expiry.
// An unknown or expired id yields a SESSION_NOT_FOUND error. fn's error is
// returned as is.
func (r *Registry) With(id string, fn func(*Session) error) error {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := r.now()
	if s.IsExpired(now) {
		r.remove(id, s)
		return errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}
	s.ExpiresAt = now.Add(r.ttl)
	return fn(s)
}

// Get returns the current view of session id.
func (r *Registry) Get(id string) (Info, error) {
	var info Info
	err := r.With(id, func(s *Session) error {
		info = s.Info()
		return nil
	})
	return info, err
}

// Delete removes session id and reports whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Len returns the number of sessions, expired ones included until Cleanup.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cleanup drops expired sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		// Sessions in use are skipped; they are by definition not idle.
		if !s.mu.TryLock() {
			continue
		}
		if s.IsExpired(now) {
			delete(r.sessions, id)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Cleanup(); n > 0 {
				logger.Debug("expired sessions removed", "count", n, "remaining", r.Len())
			}
		}
	}
}

// remove deletes id if it still maps to s.
func (r *Registry) remove(id string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[id] == s {
		delete(r.sessions, id)
	}
}
