package alignment

import (
	"math"

	"github.com/siteworks/drawalign/pkg/geometry"
)

// Fine-tune limits and default step sizes.
const (
	MinScale = 0.5
	MaxScale = 2.0

	// DefaultNudgeStep is one nudge in percent of the layer size.
	DefaultNudgeStep = 0.1
	// DefaultRotateStep is one rotation step in degrees.
	DefaultRotateStep = 0.1
	// DefaultScaleStep is one scale step (0.1%).
	DefaultScaleStep = 0.001
)

// Picked holds the points picked so far. Unpicked points are nil.
type Picked struct {
	BaseA      *geometry.Point2D `json:"baseA,omitempty"`
	BaseB      *geometry.Point2D `json:"baseB,omitempty"`
	CandidateA *geometry.Point2D `json:"candidateA,omitempty"`
	CandidateB *geometry.Point2D `json:"candidateB,omitempty"`
}

// Complete reports whether all four points are present.
func (p Picked) Complete() bool {
	return p.BaseA != nil && p.BaseB != nil && p.CandidateA != nil && p.CandidateB != nil
}

// Empty reports whether no point has been picked.
func (p Picked) Empty() bool {
	return p.BaseA == nil && p.BaseB == nil && p.CandidateA == nil && p.CandidateB == nil
}

// AlignmentPoints returns the four points. ok is false unless Complete.
func (p Picked) AlignmentPoints() (pts geometry.AlignmentPoints, ok bool) {
	if !p.Complete() {
		return pts, false
	}
	return geometry.AlignmentPoints{
		BaseA:      *p.BaseA,
		BaseB:      *p.BaseB,
		CandidateA: *p.CandidateA,
		CandidateB: *p.CandidateB,
	}, true
}

// clone deep-copies p so callers cannot mutate controller state.
func (p Picked) clone() Picked {
	cp := func(q *geometry.Point2D) *geometry.Point2D {
		if q == nil {
			return nil
		}
		v := *q
		return &v
	}
	return Picked{
		BaseA:      cp(p.BaseA),
		BaseB:      cp(p.BaseB),
		CandidateA: cp(p.CandidateA),
		CandidateB: cp(p.CandidateB),
	}
}

// Saved is the persisted form of an alignment, produced by an external store.
type Saved struct {
	Scale        float64 `json:"scale"`
	Rotation     float64 `json:"rotation"`
	TranslateX   float64 `json:"translateX"`
	TranslateY   float64 `json:"translateY"`
	CSSTransform string  `json:"cssTransform,omitempty"`
	Method       Method  `json:"method"`
	Points       *Picked `json:"alignmentPoints,omitempty"`
}

// Transform returns the canonical transform of s. CSSTransform is not consulted.
func (s Saved) Transform() geometry.Transform {
	return geometry.Transform{
		Scale:      s.Scale,
		Rotation:   s.Rotation,
		TranslateX: s.TranslateX,
		TranslateY: s.TranslateY,
	}
}

// SaveData is what a caller hands to the persistence layer.
type SaveData struct {
	Transform geometry.Transform `json:"transform"`
	Method    Method             `json:"method"`
	Points    Picked             `json:"alignmentPoints"`
}

// Saved converts d to its persisted form.
func (d SaveData) Saved() Saved {
	s := Saved{
		Scale:        d.Transform.Scale,
		Rotation:     d.Transform.Rotation,
		TranslateX:   d.Transform.TranslateX,
		TranslateY:   d.Transform.TranslateY,
		CSSTransform: d.Transform.CSSTransform(),
		Method:       d.Method,
	}
	if !d.Points.Empty() {
		pts := d.Points.clone()
		s.Points = &pts
	}
	return s
}

// Controller is the alignment state machine. The zero value is an idle
// controller with an identity transform; New is provided for symmetry.
type Controller struct {
	state     State
	points    Picked
	transform geometry.Transform
	method    Method
	tolerance float64
	loaded    bool
}

// New returns an idle controller. tolerance is passed to AutoAlign; values <= 0
// select geometry.DefaultTolerance.
func New(tolerance float64) *Controller {
	c := &Controller{tolerance: tolerance}
	c.clear(Idle)
	return c
}

func (c *Controller) clear(s State) {
	c.state = s
	c.points = Picked{}
	c.transform = geometry.Identity
	c.method = MethodManual
	c.loaded = false
}

// State returns the current state.
func (c *Controller) State() State {
	if c.state == "" {
		return Idle
	}
	return c.state
}

// Points returns a copy of the points picked so far.
func (c *Controller) Points() Picked {
	return c.points.clone()
}

// Transform returns the current transform, identity unless aligned.
func (c *Controller) Transform() geometry.Transform {
	if c.transform.Scale == 0 {
		return geometry.Identity
	}
	return c.transform
}

// Method returns how the current transform was produced.
func (c *Controller) Method() Method {
	if c.method == "" {
		return MethodManual
	}
	return c.method
}

// StatusMessage returns the prompt for the current state.
func (c *Controller) StatusMessage() string {
	return c.State().StatusMessage()
}

// IsAligning reports whether the controller waits for a point.
func (c *Controller) IsAligning() bool {
	return c.State().IsPicking()
}

// IsAligned reports whether a transform is in effect.
func (c *Controller) IsAligned() bool {
	return c.State() == Aligned
}

// ActiveLayer returns the layer whose clicks are currently accepted.
func (c *Controller) ActiveLayer() Layer {
	return c.State().Layer()
}

// CanUndo reports whether Undo would change anything.
func (c *Controller) CanUndo() bool {
	switch c.State() {
	case PickingBaseB, PickingCandidateA, PickingCandidateB:
		return true
	case Aligned:
		// Auto and loaded alignments have no picked point to step back to.
		return c.points.CandidateB != nil
	}
	return false
}

// Start begins point picking, discarding any previous points and transform.
func (c *Controller) Start() State {
	c.clear(PickingBaseA)
	return c.state
}

// Reset returns to idle from any state.
func (c *Controller) Reset() State {
	c.clear(Idle)
	return c.state
}

// Undo removes the most recently picked point. Leaving aligned resets the
// transform to identity. An auto or loaded alignment has no picked points, so
// Undo in that case stays aligned instead of returning to picking_candidate_B.
func (c *Controller) Undo() State {
	switch c.State() {
	case PickingBaseB:
		c.points.BaseA = nil
		c.state = PickingBaseA
	case PickingCandidateA:
		c.points.BaseB = nil
		c.state = PickingBaseB
	case PickingCandidateB:
		c.points.CandidateA = nil
		c.state = PickingCandidateA
	case Aligned:
		if c.points.CandidateB == nil {
			break
		}
		c.points.CandidateB = nil
		c.transform = geometry.Identity
		c.method = MethodManual
		c.state = PickingCandidateB
	}
	return c.State()
}

// Click routes a click to ClickBase or ClickCandidate.
func (c *Controller) Click(layer Layer, p geometry.Point2D) State {
	switch layer {
	case LayerBase:
		return c.ClickBase(p)
	case LayerCandidate:
		return c.ClickCandidate(p)
	}
	return c.State()
}

// ClickBase records a point on the base layer. It is ignored unless a base
// point is being picked.
func (c *Controller) ClickBase(p geometry.Point2D) State {
	switch c.State() {
	case PickingBaseA:
		c.points.BaseA = &p
		c.state = PickingBaseB
	case PickingBaseB:
		c.points.BaseB = &p
		c.state = PickingCandidateA
	}
	return c.State()
}

// ClickCandidate records a point on the candidate layer. The second candidate
// point completes the pairs and computes the transform.
func (c *Controller) ClickCandidate(p geometry.Point2D) State {
	switch c.State() {
	case PickingCandidateA:
		c.points.CandidateA = &p
		c.state = PickingCandidateB
	case PickingCandidateB:
		c.points.CandidateB = &p
		if pts, ok := c.points.AlignmentPoints(); ok {
			c.transform = geometry.ComputeAlignment(pts)
		}
		c.method = MethodManual
		c.state = Aligned
	}
	return c.State()
}

// Nudge shifts the translation by (dx, dy) percent of the layer size.
func (c *Controller) Nudge(dx, dy float64) State {
	if c.IsAligned() {
		c.transform.TranslateX += dx / 100
		c.transform.TranslateY += dy / 100
	}
	return c.State()
}

// Rotate adds deltaDegrees to the rotation.
func (c *Controller) Rotate(deltaDegrees float64) State {
	if c.IsAligned() {
		c.transform.Rotation += geometry.Radians(deltaDegrees)
	}
	return c.State()
}

// Rescale adds delta to the scale, clamped to [MinScale, MaxScale].
func (c *Controller) Rescale(delta float64) State {
	if c.IsAligned() {
		c.transform.Scale = math.Min(MaxScale, math.Max(MinScale, c.transform.Scale+delta))
	}
	return c.State()
}

// AutoAlign tries size-based alignment using the controller's tolerance. On
// success picked points are discarded and the controller is aligned with
// method auto, whatever state it was in; on failure nothing changes. The result
// is returned either way for display.
func (c *Controller) AutoAlign(base, candidate geometry.Size) geometry.AutoAlignResult {
	return c.AutoAlignTolerance(base, candidate, c.tolerance)
}

// AutoAlignTolerance is AutoAlign with an explicit aspect-ratio tolerance.
// Values <= 0 select geometry.DefaultTolerance.
func (c *Controller) AutoAlignTolerance(base, candidate geometry.Size, tolerance float64) geometry.AutoAlignResult {
	res := geometry.AutoAlign(base, candidate, tolerance)
	if !res.Success {
		return res
	}
	c.clear(Aligned)
	c.transform = res.Transform
	c.method = MethodAuto
	return res
}

// LoadSaved restores a persisted alignment from idle or aligned without picking.
// Only the four transform fields are restored; the CSS and matrix projections
// are recomputed from them, so a stored translation is kept in e and f rather
// than baked in as zero.
func (c *Controller) LoadSaved(s Saved) State {
	switch c.State() {
	case Idle, Aligned:
		c.clear(Aligned)
		c.transform = s.Transform()
		if s.Method.Valid() {
			c.method = s.Method
		}
		c.loaded = true
	}
	return c.State()
}

// Loaded reports whether the current transform came from LoadSaved.
func (c *Controller) Loaded() bool {
	return c.loaded
}

// ForSave returns the current transform and picked points for persistence.
func (c *Controller) ForSave() SaveData {
	return SaveData{
		Transform: c.Transform(),
		Method:    c.Method(),
		Points:    c.Points(),
	}
}

// Snapshot is an immutable view of a controller for rendering layers.
type Snapshot struct {
	State         State              `json:"state"`
	StatusMessage string             `json:"statusMessage"`
	ActiveLayer   Layer              `json:"activeLayer,omitempty"`
	IsAligning    bool               `json:"isAligning"`
	IsAligned     bool               `json:"isAligned"`
	CanUndo       bool               `json:"canUndo"`
	Method        Method             `json:"method"`
	Points        Picked             `json:"points"`
	Transform     geometry.Transform `json:"transform"`
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:         c.State(),
		StatusMessage: c.StatusMessage(),
		ActiveLayer:   c.ActiveLayer(),
		IsAligning:    c.IsAligning(),
		IsAligned:     c.IsAligned(),
		CanUndo:       c.CanUndo(),
		Method:        c.Method(),
		Points:        c.Points(),
		Transform:     c.Transform(),
	}
}
