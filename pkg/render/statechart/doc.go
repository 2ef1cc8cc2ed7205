// Package statechart draws the alignment controller's state machine.
//
// [ToDOT] turns a transition table (normally alignment.Transitions()) into
// Graphviz DOT source; [RenderSVG] and [RenderPNG] lay it out in-process with
// [github.com/goccy/go-graphviz], so no Graphviz installation is needed.
//
//	dot := statechart.ToDOT(alignment.Transitions(), statechart.Options{
//	    Current: ctrl.State(),
//	})
//	svg, err := statechart.RenderSVG(ctx, dot)
//
// Parallel edges between the same two states are merged into one arrow whose
// label lists every event, in table order.
package statechart
