// Package colorspace implements the sRGB ↔ CIELAB ↔ CIELCh conversion
// chain used throughout the analysis pipeline.
//
// All array functions operate on flat row-major float32 slices with a
// trailing 3-channel axis (len = pixels*3). Conversions round-trip:
// LabToRGB(RGBToLab(x)) reproduces any valid 8-bit triple within ±1
// per channel.
package colorspace

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// D65 reference white.
const (
	whiteX = 0.95047
	whiteY = 1.0
	whiteZ = 1.08883
)

// CIE Lab nonlinearity constants.
const (
	labEpsilon = 0.008856
	labKappa   = 7.787
)

// SRGBToLinear gamma-decodes a single sRGB channel in [0,1] to linear light.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB gamma-encodes a linear-light channel back to sRGB.
// Negative inputs, which the Lab inverse matrix can produce for
// out-of-gamut colors, encode as 0.
func LinearToSRGB(c float32) float32 {
	if c <= 0 {
		return 0
	}
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math32.Pow(c, 1.0/2.4) - 0.055
}

func labF(t float32) float32 {
	if t > labEpsilon {
		return math32.Cbrt(t)
	}
	return labKappa*t + 16.0/116.0
}

func labFInv(t float32) float32 {
	if t*t*t > labEpsilon {
		return t * t * t
	}
	return (t - 16.0/116.0) / labKappa
}

// RGBToLab converts tightly packed 8-bit RGB pixels into CIELAB.
// The input length must be a multiple of 3.
func RGBToLab(pix []uint8) []float32 {
	lab := make([]float32, len(pix))
	for i := 0; i < len(pix); i += 3 {
		rLin := SRGBToLinear(float32(pix[i]) / 255.0)
		gLin := SRGBToLinear(float32(pix[i+1]) / 255.0)
		bLin := SRGBToLinear(float32(pix[i+2]) / 255.0)

		// Linear sRGB to XYZ (D65 illuminant).
		x := 0.4124564*rLin + 0.3575761*gLin + 0.1804375*bLin
		y := 0.2126729*rLin + 0.7151522*gLin + 0.0721750*bLin
		z := 0.0193339*rLin + 0.1191920*gLin + 0.9503041*bLin

		fx := labF(x / whiteX)
		fy := labF(y / whiteY)
		fz := labF(z / whiteZ)

		lab[i] = 116.0*fy - 16.0
		lab[i+1] = 500.0 * (fx - fy)
		lab[i+2] = 200.0 * (fy - fz)
	}
	return lab
}

// LabToLch converts Lab coordinates to polar LCh. L is preserved,
// C = sqrt(a²+b²), and H is the hue angle in degrees in [0,360).
func LabToLch(lab []float32) []float32 {
	lch := make([]float32, len(lab))
	for i := 0; i < len(lab); i += 3 {
		a := lab[i+1]
		b := lab[i+2]
		h := math32.Atan2(b, a) * 180.0 / math32.Pi
		h = math32.Mod(h+360.0, 360.0)
		lch[i] = lab[i]
		lch[i+1] = math32.Sqrt(a*a + b*b)
		lch[i+2] = h
	}
	return lch
}

// LabToRGB converts Lab values back to 8-bit sRGB, clipping and rounding
// each channel to [0,255].
func LabToRGB(lab []float32) []uint8 {
	pix := make([]uint8, len(lab))
	for i := 0; i < len(lab); i += 3 {
		l := lab[i]
		a := lab[i+1]
		b := lab[i+2]

		fy := (l + 16.0) / 116.0
		fx := a/500.0 + fy
		fz := fy - b/200.0

		x := whiteX * labFInv(fx)
		y := whiteY * labFInv(fy)
		z := whiteZ * labFInv(fz)

		rLin := 3.2404542*x - 1.5371385*y - 0.4985314*z
		gLin := -0.9692660*x + 1.8760108*y + 0.0415560*z
		bLin := 0.0556434*x - 0.2040259*y + 1.0572252*z

		pix[i] = clip8(LinearToSRGB(rLin) * 255.0)
		pix[i+1] = clip8(LinearToSRGB(gLin) * 255.0)
		pix[i+2] = clip8(LinearToSRGB(bLin) * 255.0)
	}
	return pix
}

func clip8(v float32) uint8 {
	v = math32.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// LabDistance returns the Euclidean distance between two Lab triples.
func LabDistance(a, b [3]float32) float32 {
	dl := a[0] - b[0]
	da := a[1] - b[1]
	db := a[2] - b[2]
	return math32.Sqrt(dl*dl + da*da + db*db)
}

// RGBToHex formats a color as uppercase "#RRGGBB".
func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// HexToRGB parses a hex color string like "#7B7A64", "7B7A64" or "#FA0".
func HexToRGB(s string) ([3]uint8, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return [3]uint8{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return [3]uint8{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
	default:
		return [3]uint8{}, fmt.Errorf("invalid hex color %q: must be 3 or 6 hex digits", s)
	}
	return [3]uint8{r, g, b}, nil
}
