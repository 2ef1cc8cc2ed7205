package geometry

import (
	"fmt"
	"math"
)

// DefaultTolerance is the relative size tolerance used by AutoAlign (2%).
const DefaultTolerance = 0.02

// Auto-alignment result messages.
const (
	MsgSameSize       = "Same size detected - aligned 1:1"
	MsgAspectPrefix   = "Scaled to match"
	MsgAspectMismatch = "Different aspect ratios - use manual alignment"
)

// SizeMatch records the sizes and ratios AutoAlign compared.
type SizeMatch struct {
	BaseWidth       float64 `json:"baseWidth"`
	BaseHeight      float64 `json:"baseHeight"`
	CandidateWidth  float64 `json:"candidateWidth"`
	CandidateHeight float64 `json:"candidateHeight"`
	WidthRatio      float64 `json:"widthRatio"`
	HeightRatio     float64 `json:"heightRatio"`
}

// AutoAlignResult is the outcome of AutoAlign. On failure Transform is Identity,
// which is safe to display but should not be saved.
type AutoAlignResult struct {
	Success   bool      `json:"success"`
	Transform Transform `json:"transform"`
	Message   string    `json:"message"`
	SizeMatch SizeMatch `json:"sizeMatch"`
}

// AutoAlign aligns two canvases by size alone. A tolerance <= 0 selects
// DefaultTolerance.
//
// Pages whose width and height both match within tolerance overlay 1:1. Pages
// whose aspect ratios match are scaled uniformly by 1/widthRatio with no
// translation, which assumes both layers are anchored at their top-left corner.
// Differing aspect ratios make a single scale factor ambiguous, so AutoAlign
// declines and reports failure.
func AutoAlign(base, candidate Size, tolerance float64) AutoAlignResult {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	widthRatio := candidate.Width / base.Width
	heightRatio := candidate.Height / base.Height
	match := SizeMatch{
		BaseWidth:       base.Width,
		BaseHeight:      base.Height,
		CandidateWidth:  candidate.Width,
		CandidateHeight: candidate.Height,
		WidthRatio:      widthRatio,
		HeightRatio:     heightRatio,
	}

	if withinRatio(widthRatio, 1, tolerance) && withinRatio(heightRatio, 1, tolerance) {
		return AutoAlignResult{
			Success:   true,
			Transform: Identity,
			Message:   MsgSameSize,
			SizeMatch: match,
		}
	}

	if withinRatio(widthRatio, heightRatio, tolerance) {
		scale := 1 / widthRatio
		return AutoAlignResult{
			Success:   true,
			Transform: Transform{Scale: scale},
			Message:   fmt.Sprintf("%s (%d%%)", MsgAspectPrefix, int(math.Round(scale*100))),
			SizeMatch: match,
		}
	}

	return AutoAlignResult{
		Transform: Identity,
		Message:   MsgAspectMismatch,
		SizeMatch: match,
	}
}

// SameSize reports whether the two canvases match within tolerance in both
// dimensions.
func SameSize(base, candidate Size, tolerance float64) bool {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return withinRatio(candidate.Width/base.Width, 1, tolerance) &&
		withinRatio(candidate.Height/base.Height, 1, tolerance)
}

func withinRatio(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
