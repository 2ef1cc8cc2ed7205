package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/probe"
)

// parsePoint parses "x,y".
func parsePoint(s string) (geometry.Point2D, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point2D{}, errors.New(errors.ErrCodeInvalidPoint, "point %q must be x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point2D{}, errors.New(errors.ErrCodeInvalidPoint, "point %q: bad x", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point2D{}, errors.New(errors.ErrCodeInvalidPoint, "point %q: bad y", s)
	}
	p := geometry.Pt(x, y)
	return p, errors.ValidatePoint(p)
}

// parseSize parses "WxH" (also "W×H" or "W,H").
func parseSize(s string) (geometry.Size, bool) {
	for _, sep := range []string{"x", "X", "×", ","} {
		ws, hs, ok := strings.Cut(s, sep)
		if !ok {
			continue
		}
		w, err1 := strconv.ParseFloat(strings.TrimSpace(ws), 64)
		h, err2 := strconv.ParseFloat(strings.TrimSpace(hs), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		size := geometry.Size{Width: w, Height: h}
		return size, errors.ValidateSize(size) == nil
	}
	return geometry.Size{}, false
}

// resolveSize accepts either a literal size or an image path.
func resolveSize(ctx context.Context, p *probe.Prober, arg string) (geometry.Size, string, error) {
	if arg == "" {
		return geometry.Size{}, "", errors.New(errors.ErrCodeInvalidInput, "size or image path is required")
	}
	if size, ok := parseSize(arg); ok {
		return size, "literal", nil
	}
	res, err := p.File(ctx, arg)
	if err != nil {
		return geometry.Size{}, "", err
	}
	loggerFromContext(ctx).Debug("probed", "path", arg, "size", formatSize(res.Size), "cached", res.Cached)
	source := res.Format
	if res.Cached {
		source += ", cached"
	}
	return res.Size, source, nil
}

func formatSize(s geometry.Size) string {
	return fmt.Sprintf("%g×%g", s.Width, s.Height)
}
