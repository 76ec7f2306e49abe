// Package imaging decodes uploaded raster bytes and prepares the
// analysis-resolution working copy.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/webp"
)

// ErrDecode marks bytes that no registered decoder could read.
var ErrDecode = errors.New("undecodable image data")

// MaxAnalysisEdge caps the longer edge of the analysis working copy.
const MaxAnalysisEdge = 1600

// Decode reads raster bytes into an RGBA image. PNG, JPEG, GIF and WEBP
// are supported.
func Decode(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return toRGBA(img), nil
}

// toRGBA normalizes any decoded image to an *image.RGBA anchored at the
// origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Downsample shrinks img proportionally so its longer edge is at most
// maxEdge, using an area-averaging (box) filter. It returns the working
// copy and the exact scale factor, 1.0 when no resize was needed.
func Downsample(img *image.RGBA, maxEdge int) (*image.RGBA, float64) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return Clone(img), 1.0
	}
	scale := float64(maxEdge) / float64(longest)
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return transform.Resize(img, nw, nh, transform.Box), scale
}

// Clone returns a deep copy of img.
func Clone(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

// Pixels extracts the tightly packed RGB bytes of img, dropping alpha.
func Pixels(img *image.RGBA) []uint8 {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	pix := make([]uint8, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			pix = append(pix, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return pix
}

// EncodePNG encodes img losslessly as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded, the
// payload format of the mask rendering responses.
func EncodePNGBase64(img image.Image) (string, error) {
	raw, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
