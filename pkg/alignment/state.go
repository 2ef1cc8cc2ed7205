package alignment

// State is a step of the alignment workflow.
type State string

// Workflow states.
const (
	Idle              State = "idle"
	PickingBaseA      State = "picking_base_A"
	PickingBaseB      State = "picking_base_B"
	PickingCandidateA State = "picking_candidate_A"
	PickingCandidateB State = "picking_candidate_B"
	Aligned           State = "aligned"
)

// States lists every state in workflow order.
var States = []State{Idle, PickingBaseA, PickingBaseB, PickingCandidateA, PickingCandidateB, Aligned}

var statusMessages = map[State]string{
	Idle:              `Click "Align" to start alignment`,
	PickingBaseA:      "Click point A on the BASE drawing (blue layer)",
	PickingBaseB:      "Click point B on the BASE drawing (blue layer)",
	PickingCandidateA: "Click point A on the CANDIDATE drawing (green layer)",
	PickingCandidateB: "Click point B on the CANDIDATE drawing (green layer)",
	Aligned:           "Alignment complete. Adjust opacity to compare.",
}

// StatusMessage returns the user-facing prompt for s.
func (s State) StatusMessage() string {
	return statusMessages[s]
}

// Valid reports whether s is one of the workflow states.
func (s State) Valid() bool {
	_, ok := statusMessages[s]
	return ok
}

// IsPicking reports whether s waits for a point.
func (s State) IsPicking() bool {
	return s.Layer() != LayerNone
}

// Layer returns the layer whose clicks s accepts.
func (s State) Layer() Layer {
	switch s {
	case PickingBaseA, PickingBaseB:
		return LayerBase
	case PickingCandidateA, PickingCandidateB:
		return LayerCandidate
	default:
		return LayerNone
	}
}

// Layer identifies a drawing layer.
type Layer string

// Layers.
const (
	LayerNone      Layer = ""
	LayerBase      Layer = "base"
	LayerCandidate Layer = "candidate"
)

// ParseLayer converts "base" or "candidate" to a Layer.
func ParseLayer(s string) (Layer, bool) {
	switch Layer(s) {
	case LayerBase, LayerCandidate:
		return Layer(s), true
	}
	return LayerNone, false
}

// Method records how a transform was produced.
type Method string

// Methods.
const (
	MethodManual Method = "manual"
	MethodAuto   Method = "auto"
)

// Valid reports whether m is manual or auto.
func (m Method) Valid() bool {
	return m == MethodManual || m == MethodAuto
}

// Event names a controller input, used by the transition table.
type Event string

// Events.
const (
	EventStart          Event = "start"
	EventBaseClick      Event = "base click"
	EventCandidateClick Event = "candidate click"
	EventUndo           Event = "undo"
	EventReset          Event = "reset"
	EventFineTune       Event = "nudge / rotate / scale"
	EventAutoAlign      Event = "auto-align"
	EventLoadSaved      Event = "load saved"
)

// Transition is one edge of the state machine.
type Transition struct {
	From  State
	Event Event
	To    State
}

// Transitions returns every transition the controller can take. Inputs not
// listed leave the state unchanged.
func Transitions() []Transition {
	ts := []Transition{
		{Idle, EventStart, PickingBaseA},
		{PickingBaseA, EventBaseClick, PickingBaseB},
		{PickingBaseB, EventBaseClick, PickingCandidateA},
		{PickingCandidateA, EventCandidateClick, PickingCandidateB},
		{PickingCandidateB, EventCandidateClick, Aligned},
		{Aligned, EventFineTune, Aligned},
		{PickingBaseB, EventUndo, PickingBaseA},
		{PickingCandidateA, EventUndo, PickingBaseB},
		{PickingCandidateB, EventUndo, PickingCandidateA},
		// Manual alignments only; auto and loaded ones stay aligned.
		{Aligned, EventUndo, PickingCandidateB},
		{Idle, EventLoadSaved, Aligned},
		{Aligned, EventLoadSaved, Aligned},
	}
	for _, s := range States[1:] {
		ts = append(ts, Transition{s, EventReset, Idle})
	}
	// Auto-align succeeds from any state.
	for _, s := range States {
		ts = append(ts, Transition{s, EventAutoAlign, Aligned})
	}
	// Start restarts picking from any state.
	for _, s := range States[1:] {
		ts = append(ts, Transition{s, EventStart, PickingBaseA})
	}
	return ts
}
