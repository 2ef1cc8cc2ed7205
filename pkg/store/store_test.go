package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/config"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/observability"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestFileStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		s, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		return s
	})
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	s.Save(ctx, sampleRecord("plan-1", "survey-1", 1))
	if _, err := os.Stat(filepath.Join(dir, "plan-1", "survey-1.json")); err != nil {
		t.Errorf("record file missing: %v", err)
	}

	s.Delete(ctx, "plan-1", "survey-1")
	if _, err := os.Stat(filepath.Join(dir, "plan-1")); !os.IsNotExist(err) {
		t.Error("empty base directory should be removed")
	}
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	s.Save(ctx, sampleRecord("plan-1", "good", 1))
	os.WriteFile(filepath.Join(dir, "plan-1", "bad.json"), []byte("{"), 0o600)

	recs, err := s.List(ctx, "plan-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].CandidateDrawingID != "good" {
		t.Errorf("List = %+v", recs)
	}
}

func TestFromSaveAndSaved(t *testing.T) {
	d := alignment.SaveData{
		Transform: geometry.Transform{Scale: 2, Rotation: 0.5, TranslateX: 3, TranslateY: -4},
		Method:    alignment.MethodAuto,
	}
	rec := FromSave("b", "c", d)
	if rec.BaseDrawingID != "b" || rec.CandidateDrawingID != "c" {
		t.Errorf("ids = %q, %q", rec.BaseDrawingID, rec.CandidateDrawingID)
	}
	if rec.Transform() != d.Transform {
		t.Errorf("Transform() = %+v, want %+v", rec.Transform(), d.Transform)
	}
	if rec.Points != nil {
		t.Error("no picked points should give nil Points")
	}

	c := alignment.New(0)
	c.LoadSaved(rec.Saved())
	if !c.IsAligned() || c.Transform() != d.Transform || c.Method() != alignment.MethodAuto {
		t.Errorf("LoadSaved from record: state=%s t=%+v method=%s", c.State(), c.Transform(), c.Method())
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.Store{Backend: config.BackendMemory})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	s.Close()

	s, err = Open(ctx, config.Store{Backend: config.BackendFile, Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	s.Close()

	if _, err := Open(ctx, config.Store{Backend: "sqlite"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open unknown backend error = %v", err)
	}
}

type recordingStoreHooks struct {
	ops []string
}

func (h *recordingStoreHooks) OnStoreOp(_ context.Context, backend, op string, _ time.Duration, _ error) {
	h.ops = append(h.ops, backend+":"+op)
}

func TestInstrumentReportsOperations(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingStoreHooks{}
	observability.SetStoreHooks(hooks)

	ctx := context.Background()
	s := Instrument(NewMemoryStore(), "memory")
	s.Save(ctx, sampleRecord("b", "c", 1))
	s.Get(ctx, "b", "c")
	s.List(ctx, "b")
	s.Delete(ctx, "b", "c")

	want := []string{"memory:save", "memory:get", "memory:list", "memory:delete"}
	if len(hooks.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", hooks.ops, want)
	}
	for i := range want {
		if hooks.ops[i] != want[i] {
			t.Errorf("ops[%d] = %s, want %s", i, hooks.ops[i], want[i])
		}
	}
}
