package statechart

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/siteworks/drawalign/pkg/alignment"
)

// Options configures DOT generation.
type Options struct {
	// Current, when set, is drawn filled so a live session can show where it is.
	Current alignment.State

	// Messages adds each state's status message under its name.
	Messages bool
}

type edge struct{ from, to alignment.State }

// ToDOT converts transitions to Graphviz DOT. States appear in the order of
// alignment.States, then any extra state the table mentions.
func ToDOT(transitions []alignment.Transition, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph alignment {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("\n")

	for _, s := range states(transitions) {
		fmt.Fprintf(&buf, "  %q [%s];\n", string(s), strings.Join(nodeAttrs(s, opts), ", "))
	}

	buf.WriteString("\n")
	var order []edge
	labels := map[edge][]string{}
	for _, t := range transitions {
		e := edge{t.From, t.To}
		if _, seen := labels[e]; !seen {
			order = append(order, e)
		}
		labels[e] = appendUnique(labels[e], string(t.Event))
	}
	for _, e := range order {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", string(e.from), string(e.to), strings.Join(labels[e], "\n"))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func states(transitions []alignment.Transition) []alignment.State {
	seen := map[alignment.State]bool{}
	var out []alignment.State
	add := func(s alignment.State) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range alignment.States {
		add(s)
	}
	for _, t := range transitions {
		add(t.From)
		add(t.To)
	}
	return out
}

func nodeAttrs(s alignment.State, opts Options) []string {
	label := string(s)
	if opts.Messages && s.StatusMessage() != "" {
		label += "\n" + s.StatusMessage()
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case s == opts.Current:
		attrs = append(attrs, "fillcolor=\"#2aa198\"", "fontcolor=white")
	case s == alignment.Aligned:
		attrs = append(attrs, "peripheries=2")
	case s.IsPicking():
		attrs = append(attrs, "fillcolor=\"#eef6fb\"")
	}
	return attrs
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// RenderSVG lays out dot and returns SVG with a normalized viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out dot and returns a PNG image.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with a
// zero-origin viewBox so the chart scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
