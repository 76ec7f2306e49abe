// Package mask turns an analysis result into boolean pixel selectors.
//
// A Mask is a row-major bool grid at analysis resolution. Five mutually
// exclusive generation modes exist: value band, hue band, cluster
// membership, temperature class and Lab distance to a target color.
package mask

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/colorspace"
	"github.com/atelierlab/groundfinder/internal/summary"
)

// Generation modes.
const (
	ModeValue       = "value"
	ModeHue         = "hue"
	ModeCluster     = "cluster"
	ModeTemperature = "temperature"
	ModeGround      = "ground"
)

// Parameter defaults.
const (
	DefaultHueTolerance    = 12.0
	DefaultGroundTolerance = 7.5
)

var (
	// ErrInvalidMode marks a mode string outside the five known modes.
	ErrInvalidMode = errors.New("invalid mask mode")
	// ErrRankOutOfRange marks a cluster rank index with no cluster.
	ErrRankOutOfRange = errors.New("cluster rank index out of range")
	// ErrUnknownCategory marks a temperature category outside warm/cool/neutral.
	ErrUnknownCategory = errors.New("unknown temperature category")
)

// MissingParameterError reports a required parameter absent for the
// selected mode.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// Mask is a boolean pixel grid, row-major: index = y*Width + x.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// New returns an all-false mask of the given dimensions.
func New(w, h int) *Mask {
	return &Mask{Width: w, Height: h, Bits: make([]bool, w*h)}
}

// At reports whether the pixel at (x, y) is selected.
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Set selects or deselects the pixel at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of selected pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of m.
func (m *Mask) Clone() *Mask {
	out := New(m.Width, m.Height)
	copy(out.Bits, m.Bits)
	return out
}

// Params carries the per-mode parameters of Generate. The target fields
// are required by their mode; nil yields a MissingParameterError naming
// the parameter. Nil tolerances fall back to the package defaults; an
// explicit value is used as given, zero included.
type Params struct {
	ValueRange      *[2]int
	Hue             *float64
	HueTolerance    *float64
	ClusterRank     *int
	Temperature     string
	GroundLab       *[3]float32
	GroundTolerance *float64
}

// Generate builds a mask over the analysis-resolution pixels of res.
func Generate(res *analysis.Result, mode string, p Params) (*Mask, error) {
	switch mode {
	case ModeValue:
		if p.ValueRange == nil {
			return nil, &MissingParameterError{Param: "valueRange"}
		}
		return fromValue(res, p.ValueRange[0], p.ValueRange[1]), nil
	case ModeHue:
		if p.Hue == nil {
			return nil, &MissingParameterError{Param: "hue"}
		}
		tol := float64(DefaultHueTolerance)
		if p.HueTolerance != nil {
			tol = *p.HueTolerance
		}
		return fromHue(res, *p.Hue, tol), nil
	case ModeCluster:
		if p.ClusterRank == nil {
			return nil, &MissingParameterError{Param: "clusterRankIndex"}
		}
		return fromCluster(res, *p.ClusterRank)
	case ModeTemperature:
		if p.Temperature == "" {
			return nil, &MissingParameterError{Param: "temperatureCategory"}
		}
		return fromTemperature(res, p.Temperature)
	case ModeGround:
		if p.GroundLab == nil {
			return nil, &MissingParameterError{Param: "groundLab"}
		}
		tol := float64(DefaultGroundTolerance)
		if p.GroundTolerance != nil {
			tol = *p.GroundTolerance
		}
		return FromLabDistance(res, *p.GroundLab, tol), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// fromValue selects pixels whose L*, scaled to an 8-bit index, falls
// inside [lower, upper] inclusive.
func fromValue(res *analysis.Result, lower, upper int) *Mask {
	m := New(res.Width, res.Height)
	for i := range m.Bits {
		l := res.Lab[i*3]
		if l < 0 {
			l = 0
		}
		if l > 100 {
			l = 100
		}
		idx := int(math32.Round(l / 100.0 * 255.0))
		m.Bits[i] = idx >= lower && idx <= upper
	}
	return m
}

// fromHue selects pixels whose circular hue distance to hue is within
// tolerance degrees.
func fromHue(res *analysis.Result, hue, tolerance float64) *Mask {
	m := New(res.Width, res.Height)
	for i := range m.Bits {
		h := float64(res.Lch[i*3+2])
		diff := math.Abs(math.Mod(h-hue+180.0+360.0, 360.0) - 180.0)
		m.Bits[i] = diff <= tolerance
	}
	return m
}

// fromCluster selects pixels labeled with the original cluster id found
// at the given rank.
func fromCluster(res *analysis.Result, rank int) (*Mask, error) {
	if rank < 0 || rank >= len(res.Clusters) {
		return nil, fmt.Errorf("%w: %d", ErrRankOutOfRange, rank)
	}
	target := int32(res.Clusters[rank].OriginalID)
	m := New(res.Width, res.Height)
	for i, l := range res.Labels {
		m.Bits[i] = l == target
	}
	return m, nil
}

func fromTemperature(res *analysis.Result, category string) (*Mask, error) {
	var target uint8
	switch category {
	case "warm":
		target = summary.TemperatureWarm
	case "cool":
		target = summary.TemperatureCool
	case "neutral":
		target = summary.TemperatureNeutral
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	m := New(res.Width, res.Height)
	for i, v := range res.Temperature {
		m.Bits[i] = v == target
	}
	return m, nil
}

// FromLabDistance selects pixels within tolerance of target in Lab
// space. Exported for the ground detector, which masks around a cluster
// center.
func FromLabDistance(res *analysis.Result, target [3]float32, tolerance float64) *Mask {
	m := New(res.Width, res.Height)
	tol := float32(tolerance)
	for i := range m.Bits {
		m.Bits[i] = colorspace.LabDistance(res.LabAt(i), target) <= tol
	}
	return m
}
