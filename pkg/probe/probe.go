// Package probe reads the pixel dimensions of drawing images without
// decoding their pixels.
//
// Auto-alignment only needs canvas sizes, so the CLI and API accept image
// files and hand their header dimensions to geometry.AutoAlign. PNG, JPEG,
// GIF, BMP, TIFF and WebP are recognized.
package probe

import (
	"context"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/siteworks/drawalign/pkg/cache"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/observability"
)

// Result is the probed size of one image.
type Result struct {
	Path   string        `json:"path,omitempty"`
	Size   geometry.Size `json:"size"`
	Format string        `json:"format"`
	Cached bool          `json:"-"`
}

// Size decodes the image header from r and returns its dimensions and the
// registered format name ("png", "jpeg", ...).
func Size(r io.Reader) (geometry.Size, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return geometry.Size{}, "", errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return geometry.Size{}, format, errors.New(errors.ErrCodeInvalidImage, "image has zero size (%dx%d)", cfg.Width, cfg.Height)
	}
	return geometry.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, format, nil
}

// Prober probes files, memoizing results in Cache. A nil Cache disables
// memoization.
type Prober struct {
	Cache cache.Cache

	// Progress, if set, is called by Files before each path with its
	// zero-based index and the batch size.
	Progress func(i, n int, path string)
}

// New returns a Prober backed by c.
func New(c cache.Cache) *Prober {
	return &Prober{Cache: c}
}

// File probes the image at path. Cached entries are keyed by absolute path,
// byte size and modification time, so an edited file is probed again.
func (p *Prober) File(ctx context.Context, path string) (Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve %s", path)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeNotFound, err, "stat %s", path)
	}
	if fi.IsDir() {
		return Result{}, errors.New(errors.ErrCodeInvalidImage, "%s is a directory", path)
	}

	c := p.cache()
	key := cache.ProbeKey(abs, fi.Size(), fi.ModTime())
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		var res Result
		if json.Unmarshal(data, &res) == nil {
			observability.Cache().OnCacheHit(ctx, "probe")
			res.Path = path
			res.Cached = true
			return res, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "probe")

	f, err := os.Open(abs)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer f.Close()

	size, format, err := Size(f)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidImage, err, "%s", path)
	}
	res := Result{Path: path, Size: size, Format: format}

	if data, err := json.Marshal(Result{Size: size, Format: format}); err == nil {
		if c.Set(ctx, key, data, 0) == nil {
			observability.Cache().OnCacheSet(ctx, "probe", len(data))
		}
	}
	return res, nil
}

// Files probes each path in order, stopping at the first error.
func (p *Prober) Files(ctx context.Context, paths ...string) ([]Result, error) {
	out := make([]Result, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if p.Progress != nil {
			p.Progress(i, len(paths), path)
		}
		res, err := p.File(ctx, path)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (p *Prober) cache() cache.Cache {
	if p == nil || p.Cache == nil {
		return cache.NewNullCache()
	}
	return p.Cache
}
