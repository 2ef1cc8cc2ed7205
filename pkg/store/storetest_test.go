package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
)

// runStoreSuite exercises the Store contract against any backend. Each
// call should get a fresh, empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		s := newStore(t)
		saved, err := s.Save(ctx, sampleRecord("plan-1", "survey-1", 1.25))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if saved.ID == "" || saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
			t.Errorf("Save should stamp id and times: %+v", saved)
		}
		if saved.CSSTransform != saved.Transform().CSSTransform() {
			t.Errorf("CSSTransform = %q, want derived value", saved.CSSTransform)
		}

		got, err := s.Get(ctx, "plan-1", "survey-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != saved.ID || got.Scale != 1.25 || got.Method != alignment.MethodManual {
			t.Errorf("Get = %+v, want %+v", got, saved)
		}
		if got.Points == nil || got.Points.BaseB == nil || *got.Points.BaseB != geometry.Pt(100, 0) {
			t.Errorf("points not preserved: %+v", got.Points)
		}
	})

	t.Run("upsert keeps id and created", func(t *testing.T) {
		s := newStore(t)
		first, err := s.Save(ctx, sampleRecord("plan-1", "survey-1", 1.25))
		if err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)

		rec := sampleRecord("plan-1", "survey-1", 0.8)
		rec.Method = alignment.MethodAuto
		rec.Points = nil
		second, err := s.Save(ctx, rec)
		if err != nil {
			t.Fatal(err)
		}
		if second.ID != first.ID {
			t.Errorf("ID changed on upsert: %s -> %s", first.ID, second.ID)
		}
		if !second.CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
		}
		if !second.UpdatedAt.After(first.UpdatedAt) {
			t.Errorf("UpdatedAt should advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
		}

		got, _ := s.Get(ctx, "plan-1", "survey-1")
		if got.Scale != 0.8 || got.Method != alignment.MethodAuto || got.Points != nil {
			t.Errorf("upsert not applied: %+v", got)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "plan-1", "nope")
		if !stderrors.Is(err, ErrNotFound) {
			t.Errorf("Get missing error = %v, want ErrNotFound", err)
		}
		if !errors.Is(err, errors.ErrCodeAlignmentNotFound) {
			t.Errorf("code = %q, want ALIGNMENT_NOT_FOUND", errors.GetCode(err))
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		s.Save(ctx, sampleRecord("plan-1", "survey-1", 1))

		deleted, err := s.Delete(ctx, "plan-1", "survey-1")
		if err != nil || !deleted {
			t.Fatalf("Delete = %v, %v; want true", deleted, err)
		}
		deleted, err = s.Delete(ctx, "plan-1", "survey-1")
		if err != nil || deleted {
			t.Errorf("second Delete = %v, %v; want false", deleted, err)
		}
		if _, err := s.Get(ctx, "plan-1", "survey-1"); !stderrors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete = %v", err)
		}
	})

	t.Run("list sorted by candidate", func(t *testing.T) {
		s := newStore(t)
		for _, c := range []string{"c-3", "c-1", "c-2"} {
			if _, err := s.Save(ctx, sampleRecord("plan-1", c, 1)); err != nil {
				t.Fatal(err)
			}
		}
		s.Save(ctx, sampleRecord("plan-2", "c-9", 1))

		recs, err := s.List(ctx, "plan-1")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		var got []string
		for _, r := range recs {
			got = append(got, r.CandidateDrawingID)
		}
		if len(got) != 3 || got[0] != "c-1" || got[1] != "c-2" || got[2] != "c-3" {
			t.Errorf("List candidates = %v", got)
		}

		empty, err := s.List(ctx, "plan-none")
		if err != nil || empty == nil || len(empty) != 0 {
			t.Errorf("List empty = %v, %v; want empty non-nil slice", empty, err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		s := newStore(t)
		tests := []struct {
			name string
			rec  Record
			code errors.Code
		}{
			{"empty base", sampleRecord("", "c", 1), errors.ErrCodeInvalidDrawingID},
			{"slash in candidate", sampleRecord("b", "a/b", 1), errors.ErrCodeInvalidDrawingID},
			{"zero scale", sampleRecord("b", "c", 0), errors.ErrCodeInvalidTransform},
			{"bad method", func() Record { r := sampleRecord("b", "c", 1); r.Method = "magic"; return r }(), errors.ErrCodeInvalidMethod},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.Save(ctx, tt.rec)
				if !errors.Is(err, tt.code) {
					t.Errorf("Save error = %v, want %s", err, tt.code)
				}
			})
		}
		if _, err := s.Get(ctx, "..", "c"); !errors.Is(err, errors.ErrCodeInvalidDrawingID) {
			t.Errorf("Get(..) error = %v", err)
		}
	})

	t.Run("empty method defaults to manual", func(t *testing.T) {
		s := newStore(t)
		rec := sampleRecord("plan-1", "survey-1", 1)
		rec.Method = ""
		out, err := s.Save(ctx, rec)
		if err != nil || out.Method != alignment.MethodManual {
			t.Errorf("Save = %+v, %v", out, err)
		}
	})
}

func sampleRecord(base, candidate string, scale float64) Record {
	c := alignment.New(0)
	c.Start()
	c.ClickBase(geometry.Pt(0, 0))
	c.ClickBase(geometry.Pt(100, 0))
	c.ClickCandidate(geometry.Pt(10, 10))
	c.ClickCandidate(geometry.Pt(10, 60))

	rec := FromSave(base, candidate, c.ForSave())
	rec.Scale = scale
	return rec
}
