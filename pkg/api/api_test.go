package api

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/httputil"
	"github.com/siteworks/drawalign/pkg/session"
	"github.com/siteworks/drawalign/pkg/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return New(Options{
		Store:    store.NewMemoryStore(),
		Sessions: session.NewRegistry(time.Hour, 0),
		Logger:   log.New(io.Discard),
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[healthResponse](t, rec)
	if body.Status != "ok" || body.Build.Version == "" {
		t.Errorf("health = %+v", body)
	}
}

func TestTransformEndpoints(t *testing.T) {
	h := newTestServer(t)

	pts := geometry.AlignmentPoints{
		BaseA: geometry.Pt(0.1, 0.1), BaseB: geometry.Pt(0.5, 0.1),
		CandidateA: geometry.Pt(0.2, 0.2), CandidateB: geometry.Pt(0.4, 0.2),
	}
	rec := do(t, h, http.MethodPost, "/v1/transform", mustJSON(t, pts))
	if rec.Code != http.StatusOK {
		t.Fatalf("transform status = %d: %s", rec.Code, rec.Body)
	}
	tr := decode[geometry.Transform](t, rec)
	if !near(tr.Scale, 2) || !near(tr.Rotation, 0) {
		t.Errorf("transform = %+v, want scale 2 rotation 0", tr)
	}
	if !strings.Contains(rec.Body.String(), `"cssTransform"`) {
		t.Error("response should carry the CSS projection")
	}

	rec = do(t, h, http.MethodPost, "/v1/transform/inverse", rec.Body.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("inverse status = %d: %s", rec.Code, rec.Body)
	}
	inv := decode[geometry.Transform](t, rec)
	if !near(inv.Scale, 0.5) {
		t.Errorf("inverse scale = %v, want 0.5", inv.Scale)
	}

	rec = do(t, h, http.MethodPost, "/v1/transform/apply", mustJSON(t, applyRequest{Point: pts.CandidateA, Transform: tr}))
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d: %s", rec.Code, rec.Body)
	}
	p := decode[geometry.Point2D](t, rec)
	if !near(p.X, pts.BaseA.X) || !near(p.Y, pts.BaseA.Y) {
		t.Errorf("apply(candidateA) = %+v, want baseA %+v", p, pts.BaseA)
	}
}

func TestTransformRejectsBadInput(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		name string
		path string
		body string
		code errors.Code
	}{
		{"malformed", "/v1/transform", `{"baseA":`, errors.ErrCodeInvalidInput},
		{"empty body", "/v1/transform", ``, errors.ErrCodeInvalidInput},
		{"unknown field", "/v1/transform", `{"baseC":{"x":1,"y":1}}`, errors.ErrCodeInvalidInput},
		{"zero scale inverse", "/v1/transform/inverse", `{"scale":0}`, errors.ErrCodeInvalidTransform},
		{"bad size", "/v1/auto-align", `{"base":{"width":0,"height":1},"candidate":{"width":1,"height":1}}`, errors.ErrCodeInvalidInput},
		{"bad tolerance", "/v1/auto-align", `{"base":{"width":1,"height":1},"candidate":{"width":1,"height":1},"tolerance":2}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			body := decode[httputil.ErrorBody](t, rec)
			if body.Success || body.Code != tt.code {
				t.Errorf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestAutoAlign(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/v1/auto-align",
		`{"base":{"width":2000,"height":1000},"candidate":{"width":1000,"height":500}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	res := decode[geometry.AutoAlignResult](t, rec)
	if !res.Success || !near(res.Transform.Scale, 2) {
		t.Errorf("result = %+v", res)
	}

	rec = do(t, h, http.MethodPost, "/v1/auto-align",
		`{"base":{"width":1000,"height":1000},"candidate":{"width":1000,"height":500}}`)
	if res := decode[geometry.AutoAlignResult](t, rec); res.Success || res.Message != geometry.MsgAspectMismatch {
		t.Errorf("mismatch result = %+v", res)
	}
}

func TestAlignmentCRUD(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/v1/drawings/plan-1/alignment/survey-1", "")
	if got := decode[alignmentResponse](t, rec); !got.Success || got.Alignment != nil {
		t.Errorf("missing alignment = %+v, want success with null", got)
	}

	body := `{"candidateDrawingId":"survey-1","transform":{"scale":1.5,"rotation":0.1,"translateX":0.02,"translateY":-0.01},"method":"manual",
		"alignmentPoints":{"baseA":{"x":0.1,"y":0.1},"baseB":{"x":0.9,"y":0.1},"candidateA":{"x":0.2,"y":0.2},"candidateB":{"x":0.7,"y":0.2}}}`
	rec = do(t, h, http.MethodPost, "/v1/drawings/plan-1/alignment", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body)
	}
	saved := decode[alignmentResponse](t, rec)
	if saved.Alignment == nil || saved.Alignment.ID == "" || saved.Message != "Alignment saved successfully" {
		t.Fatalf("save = %+v", saved)
	}
	if saved.Alignment.CSSTransform == "" {
		t.Error("saved record should carry cssTransform")
	}

	do(t, h, http.MethodPost, "/v1/drawings/plan-1/alignment", `{"candidateDrawingId":"survey-0","transform":{"scale":1}}`)

	rec = do(t, h, http.MethodGet, "/v1/drawings/plan-1/alignment/survey-1", "")
	got := decode[alignmentResponse](t, rec)
	if got.Alignment == nil || got.Alignment.Scale != 1.5 || got.Alignment.Points == nil {
		t.Errorf("get = %+v", got.Alignment)
	}

	rec = do(t, h, http.MethodGet, "/v1/drawings/plan-1/alignments", "")
	list := decode[listResponse](t, rec)
	if len(list.Alignments) != 2 || list.Alignments[0].CandidateDrawingID != "survey-0" {
		t.Errorf("list = %+v", list)
	}
	if list.Alignments[0].Method != alignment.MethodManual {
		t.Errorf("omitted method should default to manual, got %q", list.Alignments[0].Method)
	}

	rec = do(t, h, http.MethodDelete, "/v1/drawings/plan-1/alignment/survey-1", "")
	if del := decode[deleteResponse](t, rec); !del.Success || !del.Deleted {
		t.Errorf("delete = %+v", del)
	}
	rec = do(t, h, http.MethodDelete, "/v1/drawings/plan-1/alignment/survey-1", "")
	if del := decode[deleteResponse](t, rec); del.Deleted {
		t.Error("second delete should report deleted=false")
	}
}

func TestSaveAlignmentValidation(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"no candidate", `{"transform":{"scale":1}}`, errors.ErrCodeInvalidDrawingID},
		{"bad method", `{"candidateDrawingId":"c","transform":{"scale":1},"method":"guess"}`, errors.ErrCodeInvalidMethod},
		{"negative scale", `{"candidateDrawingId":"c","transform":{"scale":-1}}`, errors.ErrCodeInvalidTransform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/drawings/plan-1/alignment", tt.body)
			if body := decode[httputil.ErrorBody](t, rec); body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestSessionFlow(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/sessions", `{"baseDrawingId":"plan-1","candidateDrawingId":"survey-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	info := decode[session.Info](t, rec)
	if info.Snapshot.State != alignment.Idle {
		t.Fatalf("new session state = %s", info.Snapshot.State)
	}
	base := "/v1/sessions/" + info.ID

	steps := []struct {
		path string
		body string
		want alignment.State
	}{
		{"/start", "", alignment.PickingBaseA},
		{"/click", `{"layer":"candidate","point":{"x":0.5,"y":0.5}}`, alignment.PickingBaseA},
		{"/click", `{"layer":"base","point":{"x":0.1,"y":0.1}}`, alignment.PickingBaseB},
		{"/undo", "", alignment.PickingBaseA},
		{"/click", `{"layer":"base","point":{"x":0.1,"y":0.1}}`, alignment.PickingBaseB},
		{"/click", `{"layer":"base","point":{"x":0.5,"y":0.1}}`, alignment.PickingCandidateA},
		{"/click", `{"layer":"candidate","point":{"x":0.2,"y":0.2}}`, alignment.PickingCandidateB},
		{"/click", `{"layer":"candidate","point":{"x":0.4,"y":0.2}}`, alignment.Aligned},
		{"/nudge", `{"dx":1,"dy":0}`, alignment.Aligned},
		{"/rotate", `{"degrees":0}`, alignment.Aligned},
		{"/scale", `{"delta":0.001}`, alignment.Aligned},
	}
	for _, st := range steps {
		rec := do(t, h, http.MethodPost, base+st.path, st.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d: %s", st.path, rec.Code, rec.Body)
		}
		info = decode[session.Info](t, rec)
		if info.Snapshot.State != st.want {
			t.Fatalf("after %s %s: state = %s, want %s", st.path, st.body, info.Snapshot.State, st.want)
		}
	}
	if !near(info.Snapshot.Transform.Scale, 2) {
		t.Errorf("scale = %v, want 2 (clamped at the maximum)", info.Snapshot.Transform.Scale)
	}

	rec = do(t, h, http.MethodGet, base+"/save-data", "")
	data := decode[alignment.SaveData](t, rec)
	if data.Method != alignment.MethodManual || !data.Points.Complete() {
		t.Errorf("save-data = %+v", data)
	}

	rec = do(t, h, http.MethodPost, base+"/save", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body)
	}

	// A fresh session for the same pair can restore what was saved.
	rec = do(t, h, http.MethodPost, "/v1/sessions", `{"baseDrawingId":"plan-1","candidateDrawingId":"survey-1"}`)
	other := decode[session.Info](t, rec)
	rec = do(t, h, http.MethodPost, "/v1/sessions/"+other.ID+"/restore", "")
	restored := decode[session.Info](t, rec)
	if restored.Snapshot.State != alignment.Aligned || !near(restored.Snapshot.Transform.Scale, info.Snapshot.Transform.Scale) {
		t.Errorf("restored = %+v", restored.Snapshot)
	}

	rec = do(t, h, http.MethodDelete, base, "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, base, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	h := newTestServer(t)
	info := decode[session.Info](t, do(t, h, http.MethodPost, "/v1/sessions", ""))
	base := "/v1/sessions/" + info.ID

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown session", "/v1/sessions/nope/start", "", http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"bad layer", base + "/click", `{"layer":"overlay","point":{"x":0,"y":0}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"save without pair", base + "/save", "", http.StatusBadRequest, errors.ErrCodeInvalidDrawingID},
		{"restore without pair", base + "/restore", "", http.StatusBadRequest, errors.ErrCodeInvalidDrawingID},
		{"load bad method", base + "/load", `{"scale":1,"method":"x"}`, http.StatusBadRequest, errors.ErrCodeInvalidMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if body := decode[httputil.ErrorBody](t, rec); body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestSessionAutoAlignAndLoad(t *testing.T) {
	h := newTestServer(t)
	info := decode[session.Info](t, do(t, h, http.MethodPost, "/v1/sessions", ""))
	base := "/v1/sessions/" + info.ID

	rec := do(t, h, http.MethodPost, base+"/auto-align",
		`{"base":{"width":1000,"height":800},"candidate":{"width":1000,"height":800}}`)
	resp := decode[sessionAutoAlignResponse](t, rec)
	if !resp.Result.Success || resp.Result.Message != geometry.MsgSameSize {
		t.Errorf("result = %+v", resp.Result)
	}
	if resp.Session.Snapshot.State != alignment.Aligned || resp.Session.Snapshot.Method != alignment.MethodAuto {
		t.Errorf("session = %+v", resp.Session.Snapshot)
	}

	rec = do(t, h, http.MethodPost, base+"/load", `{"scale":1.2,"rotation":0.3,"translateX":0.1,"translateY":0,"method":"manual"}`)
	loaded := decode[session.Info](t, rec)
	if !near(loaded.Snapshot.Transform.Scale, 1.2) || loaded.Snapshot.Method != alignment.MethodManual {
		t.Errorf("loaded = %+v", loaded.Snapshot)
	}
}

func TestSessionAutoAlignTolerance(t *testing.T) {
	h := newTestServer(t)
	info := decode[session.Info](t, do(t, h, http.MethodPost, "/v1/sessions", ""))
	path := "/v1/sessions/" + info.ID + "/auto-align"
	sizes := `"base":{"width":1000,"height":800},"candidate":{"width":500,"height":430}`

	resp := decode[sessionAutoAlignResponse](t, do(t, h, http.MethodPost, path, "{"+sizes+"}"))
	if resp.Result.Success || resp.Session.Snapshot.State != alignment.Idle {
		t.Fatalf("default tolerance: result = %+v, state = %q", resp.Result, resp.Session.Snapshot.State)
	}

	resp = decode[sessionAutoAlignResponse](t, do(t, h, http.MethodPost, path, "{"+sizes+`,"tolerance":0.2}`))
	if !resp.Result.Success || resp.Session.Snapshot.State != alignment.Aligned {
		t.Errorf("tolerance 0.2: result = %+v, state = %q", resp.Result, resp.Session.Snapshot.State)
	}
}

func TestSessionAutoAlignWhilePicking(t *testing.T) {
	h := newTestServer(t)
	info := decode[session.Info](t, do(t, h, http.MethodPost, "/v1/sessions", ""))
	base := "/v1/sessions/" + info.ID
	do(t, h, http.MethodPost, base+"/start", "")
	do(t, h, http.MethodPost, base+"/click", `{"layer":"base","point":{"x":0.1,"y":0.1}}`)

	resp := decode[sessionAutoAlignResponse](t, do(t, h, http.MethodPost, base+"/auto-align",
		`{"base":{"width":1000,"height":800},"candidate":{"width":500,"height":400}}`))
	snap := resp.Session.Snapshot
	if !resp.Result.Success || snap.State != alignment.Aligned || !near(snap.Transform.Scale, 2) {
		t.Errorf("result = %+v, snapshot = %+v", resp.Result, snap)
	}
	if !snap.Points.Empty() {
		t.Errorf("points = %+v, want none", snap.Points)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/v2/nothing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodPut, "/v1/transform", "{}")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
