package analysis

import (
	"sort"

	"github.com/atelierlab/groundfinder/internal/colorspace"
	"github.com/atelierlab/groundfinder/internal/palette"
)

// Suggestion is one candidate ground color derived from a value decile
// of the analyzed image.
type Suggestion struct {
	ValueStep   int
	ValueLabel  string
	Coverage    float64
	Lab         [3]float32
	Lch         [3]float32
	RGB         [3]uint8
	Hex         string
	Temperature string
	Matches     []palette.Match
}

const suggestionSteps = 9

// GroundSuggestions splits the L* axis into nine equal deciles, averages
// the color of each populated band and returns the topN bands by pixel
// coverage, each with its closest palette mixes attached.
func GroundSuggestions(r *Result, pal *palette.Palette, topN int) []Suggestion {
	total := r.PixelCount()
	if total == 0 {
		return nil
	}

	type bandAcc struct {
		count int
		lab   [3]float64
		lch   [3]float64
	}
	bands := make([]bandAcc, suggestionSteps)
	width := 100.0 / float32(suggestionSteps)
	for i := 0; i < total; i++ {
		l := r.Lab[i*3]
		idx := int(l / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= suggestionSteps {
			idx = suggestionSteps - 1
		}
		b := &bands[idx]
		b.count++
		for c := 0; c < 3; c++ {
			b.lab[c] += float64(r.Lab[i*3+c])
			b.lch[c] += float64(r.Lch[i*3+c])
		}
	}

	suggestions := make([]Suggestion, 0, suggestionSteps)
	for i, b := range bands {
		if b.count == 0 {
			continue
		}
		var lab, lch [3]float32
		for c := 0; c < 3; c++ {
			lab[c] = float32(b.lab[c] / float64(b.count))
			lch[c] = float32(b.lch[c] / float64(b.count))
		}
		rgb := colorspace.LabToRGB(lab[:])
		suggestions = append(suggestions, Suggestion{
			ValueStep:   i + 1,
			ValueLabel:  palette.ValueStepLabel(i + 1),
			Coverage:    float64(b.count) / float64(total),
			Lab:         lab,
			Lch:         lch,
			RGB:         [3]uint8{rgb[0], rgb[1], rgb[2]},
			Hex:         colorspace.RGBToHex(rgb[0], rgb[1], rgb[2]),
			Temperature: temperatureLabel(lch),
		})
	}

	sort.SliceStable(suggestions, func(a, b int) bool {
		return suggestions[a].Coverage > suggestions[b].Coverage
	})
	if len(suggestions) > topN {
		suggestions = suggestions[:topN]
	}
	for i := range suggestions {
		suggestions[i].Matches = pal.Match(suggestions[i].Lab, 3)
	}
	return suggestions
}

// temperatureLabel names the temperature of an averaged band color.
// Unlike the per-pixel map this uses the band mean, so the thresholds
// are applied once to a single LCh triple.
func temperatureLabel(lch [3]float32) string {
	chroma := lch[1]
	hue := lch[2]
	if chroma < 8.0 {
		return "neutral"
	}
	if hue <= 60.0 || hue >= 300.0 {
		return "warm"
	}
	if hue > 60.0 && hue < 240.0 {
		return "cool"
	}
	return "warm"
}
