// Package geometry computes two-point similarity transforms between drawing layers.
//
// # Overview
//
// A drawing comparison overlays a candidate drawing onto a base drawing. The user
// picks the same two physical features (A and B) on both layers and this package
// derives the uniform scale, rotation and translation that carry the candidate's
// coordinate space onto the base's:
//
//	scale    = |baseB - baseA| / |candidateB - candidateA|
//	rotation = angle(baseA→baseB) - angle(candidateA→candidateB)
//	t        = baseA - scale·R(rotation)·candidateA
//
// Point A is an exact fixed point of the result: [Apply] maps candidateA onto baseA.
//
// All coordinates are normalized to [0,1] relative to each layer's bounding box.
// Converting pointer pixels to normalized units is the caller's job.
//
// # Representation
//
// [Transform] stores only the canonical numbers (Scale, Rotation, TranslateX,
// TranslateY). The CSS and matrix forms a renderer needs are derived on demand by
// [Transform.Matrix], [Transform.CSSMatrix] and [Transform.CSSTransform], so they
// cannot drift from the numbers after fine-tuning.
//
// # Auto-alignment
//
// [AutoAlign] skips point picking for pages that share a size or an aspect ratio.
// Same-size pages overlay 1:1; proportional pages get a pure scale. Anything else
// is declined so the caller can fall back to manual alignment.
//
// # Degenerate input
//
// Nothing here returns an error. A candidate pair closer than [MinDistance] yields
// scale 1 rather than dividing by a near-zero length, and [Inverse] treats scales at
// or below [MinDistance] the same way. NaN coordinates and zero-sized canvases are
// the caller's responsibility.
package geometry
