// Package ground finds the cluster most plausible as the painting ground
// and refines ground-color masks to the portion enclosed by drawn forms.
package ground

import (
	"errors"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/mask"
)

// ErrNoCluster is returned when no cluster satisfies the eligibility window.
var ErrNoCluster = errors.New("no ground cluster detected")

// DefaultClusterTolerance is the Lab radius used when masking around a
// detected ground cluster.
const DefaultClusterTolerance = 6.0

// Window is the cluster eligibility window: mid-value, low-chroma
// clusters qualify as ground candidates. The literal defaults are kept
// as configuration rather than re-derived.
type Window struct {
	LightnessMin float32
	LightnessMax float32
	ChromaMax    float32
}

// DefaultWindow returns the stock eligibility window.
func DefaultWindow() Window {
	return Window{LightnessMin: 35, LightnessMax: 65, ChromaMax: 8}
}

// DetectCluster scans the ranked clusters and returns the rank index of
// the eligible cluster with the most pixels. The second return is false
// when no cluster qualifies.
func DetectCluster(res *analysis.Result, win Window) (int, bool) {
	best := -1
	bestPixels := -1
	for rank, c := range res.Clusters {
		l := c.CenterLch[0]
		ch := c.CenterLch[1]
		if l < win.LightnessMin || l > win.LightnessMax || ch >= win.ChromaMax {
			continue
		}
		if c.PixelCount > bestPixels {
			best = rank
			bestPixels = c.PixelCount
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// MaskFromCluster builds a Lab-distance mask around the center of the
// cluster at the given rank. tolerance at zero falls back to
// DefaultClusterTolerance.
func MaskFromCluster(res *analysis.Result, rank int, tolerance float64) (*mask.Mask, error) {
	if rank < 0 || rank >= len(res.Clusters) {
		return nil, mask.ErrRankOutOfRange
	}
	if tolerance == 0 {
		tolerance = DefaultClusterTolerance
	}
	return mask.FromLabDistance(res, res.Clusters[rank].CenterLab, tolerance), nil
}

// Coverage summarizes a mask's selected area.
type Coverage struct {
	Pixels   int
	Fraction float64
}

// Summarize counts the selected pixels of m and their fraction of the
// mask area.
func Summarize(m *mask.Mask) Coverage {
	total := m.Width * m.Height
	n := m.Count()
	cov := Coverage{Pixels: n}
	if total > 0 {
		cov.Fraction = float64(n) / float64(total)
	}
	return cov
}
