package errors

import (
	"math"
	"strings"
	"testing"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/geometry"
)

func TestValidateDrawingID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "42", false},
		{"uuid", "6f1c2d0e-8a4b-4c55-9d1e-1f2a3b4c5d6e", false},
		{"sheet code", "A-101_rev.C", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 129), true},
		{"slash", "sets/42", true},
		{"backslash", `sets\42`, true},
		{"colon", "drawing:42", true},
		{"dot dot", "..", true},
		{"null byte", "42\x00", true},
		{"newline", "42\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDrawingID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDrawingID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDrawingID) {
				t.Errorf("error code = %v", GetCode(err))
			}
		})
	}
}

func TestValidateMethod(t *testing.T) {
	for _, m := range []alignment.Method{alignment.MethodManual, alignment.MethodAuto} {
		if err := ValidateMethod(m); err != nil {
			t.Errorf("ValidateMethod(%q) = %v", m, err)
		}
	}
	for _, m := range []alignment.Method{"", "Manual", "ransac"} {
		if err := ValidateMethod(m); !Is(err, ErrCodeInvalidMethod) {
			t.Errorf("ValidateMethod(%q) = %v, want INVALID_METHOD", m, err)
		}
	}
}

func TestValidateTransform(t *testing.T) {
	tests := []struct {
		name    string
		t       geometry.Transform
		wantErr bool
	}{
		{"identity", geometry.Identity, false},
		{"rotated", geometry.Transform{Scale: 0.7, Rotation: -12, TranslateX: 3}, false},
		{"zero scale", geometry.Transform{}, true},
		{"negative scale", geometry.Transform{Scale: -1}, true},
		{"nan scale", geometry.Transform{Scale: math.NaN()}, true},
		{"inf translate", geometry.Transform{Scale: 1, TranslateY: math.Inf(1)}, true},
		{"nan rotation", geometry.Transform{Scale: 1, Rotation: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateTransform(tt.t); (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransform(%+v) = %v, wantErr %v", tt.t, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePoints(t *testing.T) {
	ok := geometry.AlignmentPoints{
		BaseA: geometry.Pt(0, 0), BaseB: geometry.Pt(1, 1),
		CandidateA: geometry.Pt(0.2, 0.3), CandidateB: geometry.Pt(1.1, -0.1),
	}
	if err := ValidatePoints(ok); err != nil {
		t.Errorf("ValidatePoints() = %v", err)
	}

	bad := ok
	bad.CandidateB = geometry.Pt(math.NaN(), 0)
	err := ValidatePoints(bad)
	if !Is(err, ErrCodeInvalidPoint) {
		t.Fatalf("ValidatePoints(NaN) = %v, want INVALID_POINT", err)
	}
	if !strings.Contains(err.Error(), "candidateB") {
		t.Errorf("error should name the point: %v", err)
	}
}

func TestValidateSizeAndTolerance(t *testing.T) {
	if err := ValidateSize(geometry.Size{Width: 1000, Height: 800}); err != nil {
		t.Errorf("ValidateSize() = %v", err)
	}
	for _, s := range []geometry.Size{{}, {Width: 10}, {Width: -1, Height: 5}, {Width: math.Inf(1), Height: 1}} {
		if err := ValidateSize(s); err == nil {
			t.Errorf("ValidateSize(%+v) should fail", s)
		}
	}

	for _, tol := range []float64{0, 0.02, 0.5} {
		if err := ValidateTolerance(tol); err != nil {
			t.Errorf("ValidateTolerance(%v) = %v", tol, err)
		}
	}
	for _, tol := range []float64{-0.1, 1, math.NaN()} {
		if err := ValidateTolerance(tol); err == nil {
			t.Errorf("ValidateTolerance(%v) should fail", tol)
		}
	}
}
