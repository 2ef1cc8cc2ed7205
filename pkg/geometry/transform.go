package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// MinDistance is the length below which a candidate pair (or a scale factor) is
// treated as degenerate.
const MinDistance = 0.001

// Transform is a similarity transform from candidate space to base space:
// p' = Scale·R(Rotation)·p + (TranslateX, TranslateY).
//
// Rotation is in radians and is never normalized; only its sine and cosine are
// used. Translation is in normalized units and is applied after scale and rotation.
type Transform struct {
	Scale      float64
	Rotation   float64
	TranslateX float64
	TranslateY float64
}

// Identity is the transform that leaves every point where it is.
var Identity = Transform{Scale: 1}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity
}

// ComputeAlignment returns the transform mapping the candidate pair onto the base
// pair. CandidateA always lands exactly on BaseA.
func ComputeAlignment(points AlignmentPoints) Transform {
	baseDistance := points.BaseA.Distance(points.BaseB)
	candidateDistance := points.CandidateA.Distance(points.CandidateB)

	scale := 1.0
	if candidateDistance > MinDistance {
		scale = baseDistance / candidateDistance
	}

	rotation := points.BaseA.AngleTo(points.BaseB) - points.CandidateA.AngleTo(points.CandidateB)

	moved := points.CandidateA.Rotate(rotation).Scale(scale)
	t := points.BaseA.Sub(moved)

	return Transform{
		Scale:      scale,
		Rotation:   rotation,
		TranslateX: t.X,
		TranslateY: t.Y,
	}
}

// Apply maps p through t.
func Apply(p Point2D, t Transform) Point2D {
	a, b, c, d, e, f := t.Matrix()
	return Point2D{
		X: a*p.X + c*p.Y + e,
		Y: b*p.X + d*p.Y + f,
	}
}

// Inverse returns the transform that undoes t. Scales at or below MinDistance
// invert to 1.
func Inverse(t Transform) Transform {
	invScale := 1.0
	if t.Scale > MinDistance {
		invScale = 1 / t.Scale
	}
	invRotation := -t.Rotation

	cos, sin := math.Cos(invRotation), math.Sin(invRotation)
	return Transform{
		Scale:      invScale,
		Rotation:   invRotation,
		TranslateX: invScale * (-t.TranslateX*cos + t.TranslateY*sin),
		TranslateY: invScale * (-t.TranslateX*sin - t.TranslateY*cos),
	}
}

// Compose returns the transform that applies u first and then t.
func Compose(t, u Transform) Transform {
	origin := Apply(Point2D{X: u.TranslateX, Y: u.TranslateY}, Transform{Scale: t.Scale, Rotation: t.Rotation})
	return Transform{
		Scale:      t.Scale * u.Scale,
		Rotation:   t.Rotation + u.Rotation,
		TranslateX: origin.X + t.TranslateX,
		TranslateY: origin.Y + t.TranslateY,
	}
}

// Matrix returns the CSS affine coefficients (a, b, c, d, e, f) where
// x' = a·x + c·y + e and y' = b·x + d·y + f.
func (t Transform) Matrix() (a, b, c, d, e, f float64) {
	cos, sin := math.Cos(t.Rotation), math.Sin(t.Rotation)
	return t.Scale * cos, t.Scale * sin, -t.Scale * sin, t.Scale * cos, t.TranslateX, t.TranslateY
}

// Matrix3 returns the 3×3 homogeneous matrix in row-major order:
// [a, c, e, b, d, f, 0, 0, 1].
func (t Transform) Matrix3() [9]float64 {
	a, b, c, d, e, f := t.Matrix()
	return [9]float64{a, c, e, b, d, f, 0, 0, 1}
}

// Dense returns Matrix3 as a gonum matrix.
func (t Transform) Dense() *mat.Dense {
	m := t.Matrix3()
	return mat.NewDense(3, 3, m[:])
}

// CSSMatrix renders the transform as a CSS matrix() function with translation in
// normalized units. Callers working in pixels scale e and f themselves.
func (t Transform) CSSMatrix() string {
	a, b, c, d, e, f := t.Matrix()
	return fmt.Sprintf("matrix(%s, %s, %s, %s, %s, %s)",
		num(a), num(b), num(c), num(d), num(e), num(f))
}

// CSSTransform renders the transform as translate() rotate() scale() with
// percentage translation, for an element sized to its container with
// transform-origin 0 0. CSS applies the functions right to left, so the scale
// happens first and the translate last.
func (t Transform) CSSTransform() string {
	return fmt.Sprintf("translate(%s%%, %s%%) rotate(%sdeg) scale(%s)",
		num(t.TranslateX*100), num(t.TranslateY*100), num(Degrees(t.Rotation)), num(t.Scale))
}

// String implements fmt.Stringer.
func (t Transform) String() string {
	return fmt.Sprintf("scale=%.6g rotation=%.6gdeg translate=(%.6g, %.6g)",
		t.Scale, Degrees(t.Rotation), t.TranslateX, t.TranslateY)
}

// num formats v in plain decimal notation; negative zero prints as 0.
func num(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// transformJSON is the wire form. The presentation fields are written for
// renderers and ignored when decoding.
type transformJSON struct {
	Scale        float64    `json:"scale"`
	Rotation     float64    `json:"rotation"`
	TranslateX   float64    `json:"translateX"`
	TranslateY   float64    `json:"translateY"`
	CSSMatrix    string     `json:"cssMatrix,omitempty"`
	CSSTransform string     `json:"cssTransform,omitempty"`
	Matrix       [9]float64 `json:"matrix"`
}

// MarshalJSON implements json.Marshaler.
func (t Transform) MarshalJSON() ([]byte, error) {
	return json.Marshal(transformJSON{
		Scale:        t.Scale,
		Rotation:     t.Rotation,
		TranslateX:   t.TranslateX,
		TranslateY:   t.TranslateY,
		CSSMatrix:    t.CSSMatrix(),
		CSSTransform: t.CSSTransform(),
		Matrix:       t.Matrix3(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transform) UnmarshalJSON(data []byte) error {
	var w transformJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Transform{
		Scale:      w.Scale,
		Rotation:   w.Rotation,
		TranslateX: w.TranslateX,
		TranslateY: w.TranslateY,
	}
	return nil
}
