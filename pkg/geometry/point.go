package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D is a point in normalized layer coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

func (p Point2D) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) Point2D {
	return Point2D{X: v.X, Y: v.Y}
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return fromVec(r2.Add(p.vec(), q.vec()))
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return fromVec(r2.Sub(p.vec(), q.vec()))
}

// Scale returns p scaled by f about the origin.
func (p Point2D) Scale(f float64) Point2D {
	return fromVec(r2.Scale(f, p.vec()))
}

// Distance returns the Euclidean distance between p and q.
func (p Point2D) Distance(q Point2D) float64 {
	return r2.Norm(r2.Sub(q.vec(), p.vec()))
}

// AngleTo returns the angle in radians of the segment from p to q.
func (p Point2D) AngleTo(q Point2D) float64 {
	return math.Atan2(q.Y-p.Y, q.X-p.X)
}

// Rotate returns p rotated by theta radians about the origin.
func (p Point2D) Rotate(theta float64) Point2D {
	return fromVec(r2.Rotate(p.vec(), theta, r2.Vec{}))
}

// AlignmentPoints holds the two picked pairs. BaseA corresponds to CandidateA and
// BaseB to CandidateB.
type AlignmentPoints struct {
	BaseA      Point2D `json:"baseA"`
	BaseB      Point2D `json:"baseB"`
	CandidateA Point2D `json:"candidateA"`
	CandidateB Point2D `json:"candidateB"`
}

// Size is a canvas size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizeAngle maps radians into (-π, π]. Transforms keep their raw rotation;
// this is for display.
func NormalizeAngle(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad <= -math.Pi {
		rad += 2 * math.Pi
	} else if rad > math.Pi {
		rad -= 2 * math.Pi
	}
	return rad
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
