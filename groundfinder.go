// Package groundfinder analyzes a reference image to help a painter
// choose a ground (base toning) color.
//
// An uploaded image is converted to CIELAB, summarized into value/hue
// distributions and a warm/cool/neutral temperature map, and clustered
// into dominant colors. From there the package detects a plausible
// ground color, generates pixel masks by value band, hue band, cluster
// membership, temperature class or Lab distance, and renders them as
// highlight/wash/extract overlays. A curated palette of ground mixes
// can be matched against any Lab color.
//
// Usage as a library:
//
//	pal, _ := groundfinder.LoadPalette()
//	result, _ := groundfinder.Analyze(imageBytes, groundfinder.DefaultOptions())
//	m, _ := groundfinder.GenerateMask(result, groundfinder.ModeTemperature,
//		groundfinder.MaskParams{Temperature: "warm"})
//	views, _ := groundfinder.RenderViews(result, m, nil, true)
//
// The cmd/groundfinder binary serves the same pipeline over HTTP.
package groundfinder

import (
	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/ground"
	"github.com/atelierlab/groundfinder/internal/mask"
	"github.com/atelierlab/groundfinder/internal/palette"
	"github.com/atelierlab/groundfinder/internal/render"
)

// Mask generation modes.
const (
	ModeValue       = mask.ModeValue
	ModeHue         = mask.ModeHue
	ModeCluster     = mask.ModeCluster
	ModeTemperature = mask.ModeTemperature
	ModeGround      = mask.ModeGround
)

// Render view names.
const (
	ViewHighlight = render.ViewHighlight
	ViewWash      = render.ViewWash
	ViewExtract   = render.ViewExtract
)

// Re-exported pipeline types.
type (
	// Options configures an analysis run.
	Options = analysis.Options
	// Result is the immutable analysis of one image.
	Result = analysis.Result
	// Mask is a boolean pixel selector at analysis resolution.
	Mask = mask.Mask
	// MaskParams carries the per-mode mask parameters.
	MaskParams = mask.Params
	// Palette is the curated ground-color table.
	Palette = palette.Palette
	// PaletteMatch is a palette entry ranked by perceptual distance.
	PaletteMatch = palette.Match
	// GroundWindow is the cluster eligibility window for ground detection.
	GroundWindow = ground.Window
	// Coverage summarizes a mask's selected area.
	Coverage = ground.Coverage
	// Suggestion is a value-decile ground color candidate.
	Suggestion = analysis.Suggestion
)

// DefaultOptions returns the stock analysis options.
func DefaultOptions() Options {
	return analysis.DefaultOptions()
}

// Analyze runs the full pipeline over raw image bytes.
func Analyze(data []byte, opts Options) (*Result, error) {
	return analysis.Analyze(data, opts)
}

// GenerateMask builds a boolean pixel mask from one of the five modes.
func GenerateMask(res *Result, mode string, p MaskParams) (*Mask, error) {
	return mask.Generate(res, mode, p)
}

// RenderViews renders a mask into the requested view encodings, each a
// base64 PNG keyed by view name. A nil views slice renders all three.
func RenderViews(res *Result, m *Mask, views []string, upscale bool) (map[string]string, error) {
	if len(views) == 0 {
		views = render.DefaultViews
	}
	return render.Views(res, m, views, upscale)
}

// DetectGround returns the rank index of the cluster most plausible as
// the painting ground; ok is false when no cluster qualifies.
func DetectGround(res *Result) (rank int, ok bool) {
	return ground.DetectCluster(res, ground.DefaultWindow())
}

// GroundMask builds a Lab-distance mask around the cluster at rank.
func GroundMask(res *Result, rank int, tolerance float64) (*Mask, error) {
	return ground.MaskFromCluster(res, rank, tolerance)
}

// GroundInside refines a ground mask to the portion enclosed by drawn
// forms and reports its coverage.
func GroundInside(res *Result, groundMask *Mask) (*Mask, Coverage) {
	inside := ground.InsideForms(res, groundMask)
	return inside, ground.Summarize(inside)
}

// LoadPalette loads the embedded curated palette.
func LoadPalette() (*Palette, error) {
	return palette.Load()
}

// MatchPalette ranks the palette entries closest to a Lab color.
func MatchPalette(pal *Palette, lab [3]float32, topN int) []PaletteMatch {
	return pal.Match(lab, topN)
}

// GroundSuggestions derives coverage-ranked ground color candidates
// from the value deciles of an analyzed image.
func GroundSuggestions(res *Result, pal *Palette, topN int) []Suggestion {
	return analysis.GroundSuggestions(res, pal, topN)
}
