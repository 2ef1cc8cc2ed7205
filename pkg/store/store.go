// Package store persists saved alignments, one record per
// (base drawing, candidate drawing) pair.
//
// Four backends implement [Store]: an in-memory map for tests and the API
// server's ephemeral mode, JSON files for the CLI, Redis and MongoDB for
// shared deployments. [Open] picks one from configuration.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/config"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/observability"
)

// ErrNotFound is wrapped by Get when no alignment exists for the pair.
var ErrNotFound = stderrors.New("alignment not found")

// Record is one persisted alignment.
type Record struct {
	ID                 string            `json:"id" bson:"_id"`
	BaseDrawingID      string            `json:"baseDrawingId" bson:"base_drawing_id"`
	CandidateDrawingID string            `json:"candidateDrawingId" bson:"candidate_drawing_id"`
	Scale              float64           `json:"scale" bson:"scale"`
	Rotation           float64           `json:"rotation" bson:"rotation"`
	TranslateX         float64           `json:"translateX" bson:"translate_x"`
	TranslateY         float64           `json:"translateY" bson:"translate_y"`
	CSSTransform       string            `json:"cssTransform" bson:"css_transform"`
	Method             alignment.Method  `json:"method" bson:"method"`
	Points             *alignment.Picked `json:"alignmentPoints,omitempty" bson:"alignment_points,omitempty"`
	CreatedAt          time.Time         `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time         `json:"updatedAt" bson:"updated_at"`
}

// Store is the persistence interface shared by all backends.
// Implementations are safe for concurrent use.
type Store interface {
	// Save inserts or replaces the record for its pair. An existing record
	// keeps its ID and CreatedAt. The stored record is returned.
	Save(ctx context.Context, rec Record) (Record, error)

	// Get returns the record for the pair or an error wrapping ErrNotFound.
	Get(ctx context.Context, base, candidate string) (Record, error)

	// Delete removes the record for the pair and reports whether it existed.
	Delete(ctx context.Context, base, candidate string) (bool, error)

	// List returns every record for base, ordered by candidate drawing ID.
	List(ctx context.Context, base string) ([]Record, error)

	Close() error
}

// FromSave builds a record from controller save data.
func FromSave(base, candidate string, d alignment.SaveData) Record {
	s := d.Saved()
	return Record{
		BaseDrawingID:      base,
		CandidateDrawingID: candidate,
		Scale:              s.Scale,
		Rotation:           s.Rotation,
		TranslateX:         s.TranslateX,
		TranslateY:         s.TranslateY,
		CSSTransform:       s.CSSTransform,
		Method:             s.Method,
		Points:             s.Points,
	}
}

// Transform returns the canonical transform stored in r.
func (r Record) Transform() geometry.Transform {
	return geometry.Transform{
		Scale:      r.Scale,
		Rotation:   r.Rotation,
		TranslateX: r.TranslateX,
		TranslateY: r.TranslateY,
	}
}

// Saved converts r for Controller.LoadSaved.
func (r Record) Saved() alignment.Saved {
	return alignment.Saved{
		Scale:        r.Scale,
		Rotation:     r.Rotation,
		TranslateX:   r.TranslateX,
		TranslateY:   r.TranslateY,
		CSSTransform: r.CSSTransform,
		Method:       r.Method,
		Points:       r.Points,
	}
}

// Validate checks the identifying and numeric fields of r.
func (r Record) Validate() error {
	if err := errors.ValidateDrawingID(r.BaseDrawingID); err != nil {
		return err
	}
	if err := errors.ValidateDrawingID(r.CandidateDrawingID); err != nil {
		return err
	}
	if err := errors.ValidateMethod(r.Method); err != nil {
		return err
	}
	if err := errors.ValidateTransform(r.Transform()); err != nil {
		return err
	}
	if r.Points != nil {
		for _, p := range []*geometry.Point2D{r.Points.BaseA, r.Points.BaseB, r.Points.CandidateA, r.Points.CandidateB} {
			if p == nil {
				continue
			}
			if err := errors.ValidatePoint(*p); err != nil {
				return err
			}
		}
	}
	return nil
}

// prepare validates rec and stamps identity and timestamps. existing is the
// record currently stored for the pair, if any. An empty method defaults to
// manual.
func prepare(rec Record, existing *Record, now time.Time) (Record, error) {
	if rec.Method == "" {
		rec.Method = alignment.MethodManual
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	rec.CSSTransform = rec.Transform().CSSTransform()
	rec.UpdatedAt = now
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
	}
	return rec, nil
}

func notFound(base, candidate string) error {
	return errors.Wrap(errors.ErrCodeAlignmentNotFound, ErrNotFound, "no alignment for %s -> %s", base, candidate)
}

func validatePair(base, candidate string) error {
	if err := errors.ValidateDrawingID(base); err != nil {
		return err
	}
	return errors.ValidateDrawingID(candidate)
}

func validateBase(base string) error {
	return errors.ValidateDrawingID(base)
}

func unavailable(backend string, err error) error {
	return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "%s store", backend)
}

// Open returns the backend selected by cfg.Backend, instrumented with the
// registered observability store hooks.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendFile, "":
		s, err = NewFileStore(cfg.Path)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = config.BackendFile
	}
	return Instrument(s, backend), nil
}

// Instrument wraps s so every call reports to observability.Store().
func Instrument(s Store, backend string) Store {
	return &instrumented{inner: s, backend: backend}
}

type instrumented struct {
	inner   Store
	backend string
}

func (s *instrumented) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, s.backend, op, time.Since(start), err)
}

func (s *instrumented) Save(ctx context.Context, rec Record) (Record, error) {
	start := time.Now()
	out, err := s.inner.Save(ctx, rec)
	s.report(ctx, "save", start, err)
	return out, err
}

func (s *instrumented) Get(ctx context.Context, base, candidate string) (Record, error) {
	start := time.Now()
	out, err := s.inner.Get(ctx, base, candidate)
	s.report(ctx, "get", start, err)
	return out, err
}

func (s *instrumented) Delete(ctx context.Context, base, candidate string) (bool, error) {
	start := time.Now()
	ok, err := s.inner.Delete(ctx, base, candidate)
	s.report(ctx, "delete", start, err)
	return ok, err
}

func (s *instrumented) List(ctx context.Context, base string) ([]Record, error) {
	start := time.Now()
	out, err := s.inner.List(ctx, base)
	s.report(ctx, "list", start, err)
	return out, err
}

func (s *instrumented) Close() error { return s.inner.Close() }

// String names the backend, e.g. for log lines.
func (s *instrumented) String() string { return fmt.Sprintf("%s store", s.backend) }
