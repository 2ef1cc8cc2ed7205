package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/geometry"
)

// maxDrawingIDLength bounds drawing identifiers used as store keys.
const maxDrawingIDLength = 128

// ValidateDrawingID validates a drawing identifier for use as a store key.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or ':' (the Redis key separator)
//   - Maximum length of 128 characters
func ValidateDrawingID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDrawingID, "drawing id cannot be empty")
	}
	if len(id) > maxDrawingIDLength {
		return New(ErrCodeInvalidDrawingID, "drawing id too long (max %d characters)", maxDrawingIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDrawingID, "drawing id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, `/\:`) || id == "." || id == ".." {
		return New(ErrCodeInvalidDrawingID, "drawing id contains invalid characters: %q", id)
	}
	return nil
}

// ValidateMethod checks that m is "manual" or "auto".
func ValidateMethod(m alignment.Method) error {
	if !m.Valid() {
		return New(ErrCodeInvalidMethod, "method must be manual or auto, got %q", m)
	}
	return nil
}

// ValidatePoint checks that p has finite coordinates. Coordinates outside [0,1]
// are allowed: a picked point may lie on a layer's overflow.
func ValidatePoint(p geometry.Point2D) error {
	if !finite(p.X) || !finite(p.Y) {
		return New(ErrCodeInvalidPoint, "point (%v, %v) is not finite", p.X, p.Y)
	}
	return nil
}

// ValidatePoints validates all four alignment points, naming the first bad one.
func ValidatePoints(pts geometry.AlignmentPoints) error {
	named := []struct {
		name string
		p    geometry.Point2D
	}{
		{"baseA", pts.BaseA}, {"baseB", pts.BaseB},
		{"candidateA", pts.CandidateA}, {"candidateB", pts.CandidateB},
	}
	for _, n := range named {
		if err := ValidatePoint(n.p); err != nil {
			return New(ErrCodeInvalidPoint, "%s: %s", n.name, UserMessage(err))
		}
	}
	return nil
}

// ValidateTransform checks that t has a finite positive scale and finite
// rotation and translation.
func ValidateTransform(t geometry.Transform) error {
	if !finite(t.Scale) || t.Scale <= 0 {
		return New(ErrCodeInvalidTransform, "scale must be a positive number, got %v", t.Scale)
	}
	if !finite(t.Rotation) || !finite(t.TranslateX) || !finite(t.TranslateY) {
		return New(ErrCodeInvalidTransform, "rotation and translation must be finite")
	}
	return nil
}

// ValidateSize checks that a canvas size is positive and finite.
func ValidateSize(s geometry.Size) error {
	if !finite(s.Width) || !finite(s.Height) || s.Width <= 0 || s.Height <= 0 {
		return New(ErrCodeInvalidInput, "canvas size must be positive, got %vx%v", s.Width, s.Height)
	}
	return nil
}

// ValidateTolerance checks an auto-align tolerance. Zero selects the default.
func ValidateTolerance(tol float64) error {
	if !finite(tol) || tol < 0 || tol >= 1 {
		return New(ErrCodeInvalidInput, "tolerance must be in [0, 1), got %v", tol)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
