package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/config"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/store"
)

// Canvas styles
var (
	canvasBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	basePointStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	candPointStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	cursorStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	mappedPointStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	canvasWidth  = 48
	canvasHeight = 16

	// cursorStep is one cursor move in normalized units; shifted keys move 10×.
	cursorStep = 0.01
	coarse     = 10
)

// =============================================================================
// AlignModel - Interactive two-point alignment
// =============================================================================

// savedMsg reports the outcome of a save started with "w".
type savedMsg struct {
	rec store.Record
	err error
}

// AlignModel is the bubbletea model driving an alignment.Controller from the
// keyboard. Points are picked with a cursor on a normalized canvas.
type AlignModel struct {
	Controller *alignment.Controller
	Cursor     geometry.Point2D
	Steps      config.Align

	BaseSize      *geometry.Size
	CandidateSize *geometry.Size

	BaseID      string
	CandidateID string
	Store       store.Store

	Message string
	Saved   *store.Record

	ctx context.Context
}

// NewAlignModel creates an idle model with the cursor centred.
func NewAlignModel(ctx context.Context, steps config.Align) AlignModel {
	return AlignModel{
		Controller: alignment.New(steps.Tolerance),
		Cursor:     geometry.Pt(0.5, 0.5),
		Steps:      steps,
		ctx:        ctx,
	}
}

func (m AlignModel) Init() tea.Cmd {
	return nil
}

func (m AlignModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.err != nil {
			m.Message = "Save failed: " + msg.err.Error()
			return m, nil
		}
		m.Saved = &msg.rec
		m.Message = "Saved " + msg.rec.ID
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m AlignModel) handleKey(key string) (tea.Model, tea.Cmd) {
	ctrl := m.Controller
	m.Message = ""

	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "s":
		ctrl.Start()
		return m, nil
	case "r":
		ctrl.Reset()
		m.Saved = nil
		return m, nil
	case "u":
		ctrl.Undo()
		return m, nil
	case "a":
		if m.BaseSize == nil || m.CandidateSize == nil {
			m.Message = "Auto-align needs --base and --candidate sizes"
			return m, nil
		}
		res := ctrl.AutoAlign(*m.BaseSize, *m.CandidateSize)
		m.Message = res.Message
		return m, nil
	case "w":
		return m.save()
	}

	if ctrl.IsAligning() {
		return m.handlePicking(key), nil
	}
	if ctrl.IsAligned() {
		return m.handleFineTune(key), nil
	}
	return m, nil
}

func (m AlignModel) handlePicking(key string) AlignModel {
	if dx, dy, ok := direction(key); ok {
		m.Cursor = geometry.Pt(clamp01(m.Cursor.X+dx*cursorStep), clamp01(m.Cursor.Y+dy*cursorStep))
		return m
	}
	switch key {
	case "enter", " ", "space":
		m.Controller.Click(m.Controller.ActiveLayer(), m.Cursor)
	}
	return m
}

func (m AlignModel) handleFineTune(key string) AlignModel {
	ctrl := m.Controller
	if dx, dy, ok := direction(key); ok {
		ctrl.Nudge(dx*m.Steps.NudgeStep, dy*m.Steps.NudgeStep)
		return m
	}
	switch key {
	case "[":
		ctrl.Rotate(-m.Steps.RotateStep)
	case "]":
		ctrl.Rotate(m.Steps.RotateStep)
	case "{":
		ctrl.Rotate(-m.Steps.RotateStep * coarse)
	case "}":
		ctrl.Rotate(m.Steps.RotateStep * coarse)
	case "+", "=":
		ctrl.Rescale(m.Steps.ScaleStep)
	case "-", "_":
		ctrl.Rescale(-m.Steps.ScaleStep)
	}
	return m
}

// save persists the current alignment. It runs as a tea.Cmd so the store
// round trip does not block the UI.
func (m AlignModel) save() (tea.Model, tea.Cmd) {
	if !m.Controller.IsAligned() {
		m.Message = "Nothing to save until aligned"
		return m, nil
	}
	if m.Store == nil || m.BaseID == "" || m.CandidateID == "" {
		m.Message = "Saving needs --base-id and --candidate-id"
		return m, nil
	}

	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	rec := store.FromSave(m.BaseID, m.CandidateID, m.Controller.ForSave())
	s := m.Store
	m.Message = "Saving..."
	return m, func() tea.Msg {
		saved, err := s.Save(ctx, rec)
		return savedMsg{rec: saved, err: err}
	}
}

// direction maps arrow and hjkl keys to a unit step. Shifted keys are coarse.
func direction(key string) (dx, dy float64, ok bool) {
	switch key {
	case "left", "h":
		return -1, 0, true
	case "right", "l":
		return 1, 0, true
	case "up", "k":
		return 0, -1, true
	case "down", "j":
		return 0, 1, true
	case "shift+left", "H":
		return -coarse, 0, true
	case "shift+right", "L":
		return coarse, 0, true
	case "shift+up", "K":
		return 0, -coarse, true
	case "shift+down", "J":
		return 0, coarse, true
	}
	return 0, 0, false
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func (m AlignModel) View() string {
	var b strings.Builder
	snap := m.Controller.Snapshot()

	title := "Align"
	if m.BaseID != "" && m.CandidateID != "" {
		title += " " + m.BaseID + " " + iconArrow + " " + m.CandidateID
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(layerStyle(snap.ActiveLayer).Render(snap.StatusMessage))
	b.WriteString("\n\n")

	b.WriteString(canvasBorderStyle.Render(m.canvas(snap)))
	b.WriteString("\n")

	if snap.IsAligned {
		t := snap.Transform
		b.WriteString(fmt.Sprintf("  %s %s  %s %s  %s %s, %s\n",
			listDimStyle.Render("scale"), StyleNumber.Render(fmt.Sprintf("%.4f", t.Scale)),
			listDimStyle.Render("rotation"), StyleNumber.Render(fmt.Sprintf("%.2f°", geometry.Degrees(t.Rotation))),
			listDimStyle.Render("translate"), StyleNumber.Render(fmt.Sprintf("%.2f%%", t.TranslateX*100)),
			StyleNumber.Render(fmt.Sprintf("%.2f%%", t.TranslateY*100))))
		b.WriteString("  " + listDimStyle.Render(string(snap.Method)+" · "+t.CSSTransform()) + "\n")
	} else if snap.IsAligning {
		b.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render("cursor"),
			StyleValue.Render(fmt.Sprintf("%.2f, %.2f", m.Cursor.X, m.Cursor.Y))))
	}

	if m.Message != "" {
		b.WriteString("\n  " + StyleWarning.Render(m.Message) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.help(snap)))
	return b.String()
}

func (m AlignModel) help(snap alignment.Snapshot) string {
	switch {
	case snap.IsAligning:
		return "←↑↓→/hjkl move (shift ×10)  ⏎ pick  a auto-align  u undo  r reset  q quit"
	case snap.IsAligned:
		return "←↑↓→ nudge  [ ] rotate  + - scale  w save  u undo  s restart  r reset  q quit"
	}
	return "s start  a auto-align  q quit"
}

func layerStyle(l alignment.Layer) lipgloss.Style {
	switch l {
	case alignment.LayerBase:
		return basePointStyle
	case alignment.LayerCandidate:
		return candPointStyle
	}
	return StyleValue
}

// canvas draws the unit square with picked points, the cursor and, once
// aligned, the candidate points mapped into base space.
func (m AlignModel) canvas(snap alignment.Snapshot) string {
	grid := make([][]string, canvasHeight)
	for y := range grid {
		grid[y] = make([]string, canvasWidth)
		for x := range grid[y] {
			grid[y][x] = listDimStyle.Render("·")
		}
	}

	plot := func(p *geometry.Point2D, glyph string, style lipgloss.Style) {
		if p == nil {
			return
		}
		x := int(math.Round(p.X * (canvasWidth - 1)))
		y := int(math.Round(p.Y * (canvasHeight - 1)))
		if x < 0 || x >= canvasWidth || y < 0 || y >= canvasHeight {
			return
		}
		grid[y][x] = style.Render(glyph)
	}

	pts := snap.Points
	if snap.IsAligned {
		mapped := func(p *geometry.Point2D) *geometry.Point2D {
			if p == nil {
				return nil
			}
			q := geometry.Apply(*p, snap.Transform)
			return &q
		}
		plot(mapped(pts.CandidateA), "a", mappedPointStyle)
		plot(mapped(pts.CandidateB), "b", mappedPointStyle)
	} else {
		plot(pts.CandidateA, "a", candPointStyle)
		plot(pts.CandidateB, "b", candPointStyle)
	}
	plot(pts.BaseA, "A", basePointStyle)
	plot(pts.BaseB, "B", basePointStyle)
	if snap.IsAligning {
		cursor := m.Cursor
		plot(&cursor, "+", cursorStyle)
	}

	rows := make([]string, canvasHeight)
	for y, row := range grid {
		rows[y] = strings.Join(row, "")
	}
	return strings.Join(rows, "\n")
}
