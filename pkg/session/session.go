// Package session keeps live alignment controllers for the HTTP API.
//
// A Controller is single-owner, so every session carries its own mutex and
// callers reach the controller only through [Registry.With], which holds
// that lock for the duration of the callback. Sessions slide their expiry
// forward on each use and are dropped by [Registry.Cleanup] once idle for
// longer than the registry TTL.
package session

import (
	"sync"
	"time"

	"github.com/siteworks/drawalign/pkg/alignment"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 2 * time.Hour

// Session is one alignment in progress.
type Session struct {
	ID string

	// Drawing IDs used when the session saves or loads through the store.
	// Either may be empty for a purely interactive session.
	BaseDrawingID      string
	CandidateDrawingID string

	Controller *alignment.Controller
	CreatedAt  time.Time
	ExpiresAt  time.Time

	mu sync.Mutex
}

// IsExpired reports whether s had expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Info is the JSON view of a session returned by the API.
type Info struct {
	ID                 string             `json:"id"`
	BaseDrawingID      string             `json:"baseDrawingId,omitempty"`
	CandidateDrawingID string             `json:"candidateDrawingId,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	ExpiresAt          time.Time          `json:"expiresAt"`
	Snapshot           alignment.Snapshot `json:"snapshot"`
}

// Info returns the current view. Callers must hold the session (inside With).
func (s *Session) Info() Info {
	return Info{
		ID:                 s.ID,
		BaseDrawingID:      s.BaseDrawingID,
		CandidateDrawingID: s.CandidateDrawingID,
		CreatedAt:          s.CreatedAt,
		ExpiresAt:          s.ExpiresAt,
		Snapshot:           s.Controller.Snapshot(),
	}
}
