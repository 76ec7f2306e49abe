// Package render turns a boolean mask into visual overlay encodings of
// the analyzed image.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/imaging"
	"github.com/atelierlab/groundfinder/internal/mask"
)

// View names.
const (
	ViewHighlight = "highlight"
	ViewWash      = "wash"
	ViewExtract   = "extract"
)

// DefaultViews renders all three encodings.
var DefaultViews = []string{ViewHighlight, ViewWash, ViewExtract}

// ErrInvalidView marks a view name outside highlight/wash/extract.
var ErrInvalidView = errors.New("unknown render view")

// Highlight overlay color and opacity.
var highlightColor = [3]float32{255, 64, 64}

const (
	highlightOpacity = 0.6
	washFactor       = 0.15
)

// Views renders the requested view encodings and returns each as a
// base64 PNG keyed by view name. When upscale is set and the analysis
// was downsampled, the mask is upsampled with nearest-neighbor
// interpolation (hard boundaries, no blending) and rendering uses the
// original-resolution image.
func Views(res *analysis.Result, m *mask.Mask, views []string, upscale bool) (map[string]string, error) {
	base := res.Analysis
	if upscale && res.DownscaleRatio != 1.0 {
		ow := res.Original.Bounds().Dx()
		oh := res.Original.Bounds().Dy()
		m = UpsampleMask(m, ow, oh)
		base = res.Original
	}

	out := make(map[string]string, len(views))
	for _, view := range views {
		var img image.Image
		switch view {
		case ViewHighlight:
			img = applyHighlight(base, m)
		case ViewWash:
			img = applyWash(base, m)
		case ViewExtract:
			img = applyExtract(base, m)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidView, view)
		}
		encoded, err := imaging.EncodePNGBase64(img)
		if err != nil {
			return nil, err
		}
		out[view] = encoded
	}
	return out, nil
}

// UpsampleMask resizes m to the target dimensions with nearest-neighbor
// interpolation, preserving hard mask boundaries.
func UpsampleMask(m *mask.Mask, w, h int) *mask.Mask {
	gray := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, b := range m.Bits {
		if b {
			gray.Pix[i] = 255
		}
	}
	resized := transform.Resize(gray, w, h, transform.NearestNeighbor)

	out := mask.New(w, h)
	for y := 0; y < h; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < w; x++ {
			out.Bits[y*w+x] = row[x*4] > 127
		}
	}
	return out
}

// applyHighlight blends the highlight color at fixed opacity over masked
// pixels; unmasked pixels pass through unchanged.
func applyHighlight(base *image.RGBA, m *mask.Mask) *image.RGBA {
	out := imaging.Clone(base)
	forEachMasked(base, m, func(i int, masked bool) {
		if !masked {
			return
		}
		for c := 0; c < 3; c++ {
			v := highlightOpacity*highlightColor[c] + (1-highlightOpacity)*float32(out.Pix[i+c])
			out.Pix[i+c] = clip8(v)
		}
	})
	return out
}

// applyWash darkens unmasked pixels to a fraction of their original
// intensity; masked pixels pass through unchanged.
func applyWash(base *image.RGBA, m *mask.Mask) *image.RGBA {
	out := imaging.Clone(base)
	forEachMasked(base, m, func(i int, masked bool) {
		if masked {
			return
		}
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = clip8(float32(out.Pix[i+c]) * washFactor)
		}
	})
	return out
}

// applyExtract copies RGB and sets alpha opaque inside the mask,
// transparent outside. NRGBA keeps color values intact under zero alpha.
func applyExtract(base *image.RGBA, m *mask.Mask) *image.NRGBA {
	w := base.Bounds().Dx()
	h := base.Bounds().Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := base.Pix[y*base.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x*4] = src[x*4]
			dst[x*4+1] = src[x*4+1]
			dst[x*4+2] = src[x*4+2]
			if m.At(x, y) {
				dst[x*4+3] = 255
			}
		}
	}
	return out
}

// forEachMasked walks every pixel, handing the callback the pixel's byte
// offset into the RGBA buffer and its mask bit.
func forEachMasked(base *image.RGBA, m *mask.Mask, fn func(i int, masked bool)) {
	w := base.Bounds().Dx()
	h := base.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fn(y*base.Stride+x*4, m.At(x, y))
		}
	}
}

func clip8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
