package cli

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/config"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/store"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "shift+up":
		return tea.KeyMsg{Type: tea.KeyShiftUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m AlignModel, keys ...string) (AlignModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(AlignModel)
	}
	return m, cmd
}

func pickAt(m AlignModel, p geometry.Point2D) AlignModel {
	m.Cursor = p
	m, _ = press(m, "enter")
	return m
}

func newTestModel() AlignModel {
	return NewAlignModel(context.Background(), config.Default().Align)
}

func alignedModel(t *testing.T) AlignModel {
	t.Helper()
	m, _ := press(newTestModel(), "s")
	m = pickAt(m, geometry.Pt(0.2, 0.2))
	m = pickAt(m, geometry.Pt(0.8, 0.2))
	m = pickAt(m, geometry.Pt(0.1, 0.3))
	m = pickAt(m, geometry.Pt(0.4, 0.3))
	if got := m.Controller.State(); got != alignment.Aligned {
		t.Fatalf("state = %q, want aligned", got)
	}
	return m
}

func TestAlignModelPicking(t *testing.T) {
	m := alignedModel(t)
	tr := m.Controller.Transform()
	if math.Abs(tr.Scale-2) > 1e-9 {
		t.Errorf("Scale = %v, want 2", tr.Scale)
	}
	if m.Controller.Method() != alignment.MethodManual {
		t.Errorf("Method = %q", m.Controller.Method())
	}
}

func TestAlignModelCursor(t *testing.T) {
	m, _ := press(newTestModel(), "s")
	start := m.Cursor

	m, _ = press(m, "right", "l", "down")
	if math.Abs(m.Cursor.X-(start.X+2*cursorStep)) > 1e-9 || math.Abs(m.Cursor.Y-(start.Y+cursorStep)) > 1e-9 {
		t.Errorf("cursor = %+v", m.Cursor)
	}

	for i := 0; i < 20; i++ {
		m, _ = press(m, "shift+up")
	}
	if m.Cursor.Y != 0 {
		t.Errorf("cursor y = %v, want clamped to 0", m.Cursor.Y)
	}

	m, _ = press(newTestModel(), "right")
	if m.Cursor != geometry.Pt(0.5, 0.5) {
		t.Error("cursor should not move while idle")
	}
}

func TestAlignModelUndoReset(t *testing.T) {
	m := alignedModel(t)

	m, _ = press(m, "u")
	if got := m.Controller.State(); got != alignment.PickingCandidateB {
		t.Errorf("after undo state = %q", got)
	}
	if !m.Controller.Transform().IsIdentity() {
		t.Error("undo out of aligned should reset the transform")
	}

	m, _ = press(m, "r")
	if got := m.Controller.State(); got != alignment.Idle {
		t.Errorf("after reset state = %q", got)
	}
}

func TestAlignModelFineTune(t *testing.T) {
	m := alignedModel(t)
	steps := m.Steps
	before := m.Controller.Transform()

	m, _ = press(m, "right", "]", "-")
	after := m.Controller.Transform()

	if got := after.TranslateX - before.TranslateX; math.Abs(got-steps.NudgeStep/100) > 1e-12 {
		t.Errorf("nudge moved x by %v", got)
	}
	if got := geometry.Degrees(after.Rotation - before.Rotation); math.Abs(got-steps.RotateStep) > 1e-9 {
		t.Errorf("rotate changed by %v°", got)
	}
	if got := after.Scale - before.Scale; math.Abs(got+steps.ScaleStep) > 1e-12 {
		t.Errorf("scale changed by %v", got)
	}
}

func TestAlignModelAutoAlign(t *testing.T) {
	m := newTestModel()
	m, _ = press(m, "a")
	if m.Message == "" || m.Controller.IsAligned() {
		t.Fatal("auto-align without sizes should only report")
	}

	base := geometry.Size{Width: 2000, Height: 1000}
	cand := geometry.Size{Width: 1000, Height: 500}
	m.BaseSize, m.CandidateSize = &base, &cand

	m, _ = press(m, "a")
	if !m.Controller.IsAligned() || m.Controller.Method() != alignment.MethodAuto {
		t.Fatalf("state = %q, method = %q", m.Controller.State(), m.Controller.Method())
	}
	if got := m.Controller.Transform().Scale; math.Abs(got-2) > 1e-9 {
		t.Errorf("Scale = %v, want 2", got)
	}

	m, _ = press(m, "s", "enter", "a")
	if !m.Controller.IsAligned() || !m.Controller.Points().Empty() {
		t.Errorf("auto-align while picking should discard points, state = %q", m.Controller.State())
	}
}

func TestAlignModelSave(t *testing.T) {
	m := alignedModel(t)

	m, cmd := press(m, "w")
	if cmd != nil {
		t.Fatal("save without a store should not start a command")
	}

	s := store.NewMemoryStore()
	m.Store, m.BaseID, m.CandidateID = s, "plan-a", "plan-b"
	m, cmd = press(m, "w")
	if cmd == nil {
		t.Fatal("save should return a command")
	}

	next, _ := m.Update(cmd())
	m = next.(AlignModel)
	if m.Saved == nil {
		t.Fatalf("Saved = nil, message %q", m.Message)
	}

	rec, err := s.Get(context.Background(), "plan-a", "plan-b")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Method != alignment.MethodManual || math.Abs(rec.Scale-2) > 1e-9 {
		t.Errorf("stored %+v", rec)
	}
	if rec.Points == nil || !rec.Points.Complete() {
		t.Error("picked points should be stored")
	}
}

func TestAlignModelQuit(t *testing.T) {
	_, cmd := press(newTestModel(), "q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestAlignModelView(t *testing.T) {
	m := newTestModel()
	if !strings.Contains(m.View(), "start") {
		t.Error("idle view should show start help")
	}

	m, _ = press(m, "s")
	if !strings.Contains(m.View(), "BASE") {
		t.Error("picking view should show the base prompt")
	}

	m = alignedModel(t)
	view := m.View()
	for _, want := range []string{"scale", "2.0000", "manual"} {
		if !strings.Contains(view, want) {
			t.Errorf("aligned view missing %q", want)
		}
	}
}
