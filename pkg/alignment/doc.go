// Package alignment drives the interactive two-point alignment workflow.
//
// A [Controller] is a small state machine. The caller forwards pointer clicks on
// the base and candidate layers; once both pairs are picked the controller asks
// [geometry.ComputeAlignment] for the transform and enters [Aligned]:
//
//	idle → picking_base_A → picking_base_B → picking_candidate_A → picking_candidate_B → aligned
//
// Undo steps back one point, Reset returns to idle from anywhere, and LoadSaved
// or a successful AutoAlign jump straight to aligned. While aligned the transform
// can be fine-tuned with Nudge, Rotate and Rescale.
//
// The controller never returns errors. Clicks on the wrong layer, fine-tuning
// outside the aligned state and undo with nothing to undo are ignored; these are
// normal UI races such as a double click, and state gating keeps them harmless.
//
// A Controller is not safe for concurrent use. Hosts serving several sessions
// keep one controller per session (see package session). Rendering is not this
// package's concern: callers read [Controller.Snapshot] and draw from it.
package alignment
