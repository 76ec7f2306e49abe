// Package summary builds the value/hue distributions and the per-pixel
// temperature classification of an analyzed image.
package summary

// Temperature classes. The numeric values are stored in the temperature
// map and must stay stable across the pipeline.
const (
	TemperatureWarm    uint8 = 0
	TemperatureCool    uint8 = 1
	TemperatureNeutral uint8 = 2
)

// Default classification thresholds. Hardcoded heuristics kept as
// configurable parameters with these literal defaults.
const (
	DefaultWarmSpan      = 60.0
	DefaultNeutralChroma = 8.0
)

// ValueHistogram counts L* values (clipped to [0,100]) into bins
// equal-width buckets spanning [0,100]. lab is a flat Lab array.
func ValueHistogram(lab []float32, bins int) []int64 {
	hist := make([]int64, bins)
	for i := 0; i < len(lab); i += 3 {
		l := lab[i]
		if l < 0 {
			l = 0
		}
		if l > 100 {
			l = 100
		}
		idx := int(l / 100.0 * float32(bins))
		if idx >= bins {
			idx = bins - 1
		}
		hist[idx]++
	}
	return hist
}

// HueHistogram counts hue angles into bins equal-width buckets spanning
// [0,360). lch is a flat LCh array.
func HueHistogram(lch []float32, bins int) []int64 {
	hist := make([]int64, bins)
	for i := 0; i < len(lch); i += 3 {
		h := lch[i+2]
		idx := int(h / 360.0 * float32(bins))
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		hist[idx]++
	}
	return hist
}

// ClassifyTemperature assigns warm/cool/neutral to every pixel of a flat
// LCh array. A hue within warmSpan degrees of 0° is warm, anything else
// cool; pixels with chroma below neutralChroma are stamped neutral last,
// overriding the warm/cool assignment. warmSpan is clamped to [0,180].
func ClassifyTemperature(lch []float32, warmSpan, neutralChroma float32) []uint8 {
	if warmSpan < 0 {
		warmSpan = 0
	}
	if warmSpan > 180 {
		warmSpan = 180
	}
	warmLower := 360.0 - warmSpan

	out := make([]uint8, len(lch)/3)
	for i, j := 0, 0; i < len(lch); i, j = i+3, j+1 {
		c := lch[i+1]
		h := lch[i+2]
		cls := TemperatureCool
		if h <= warmSpan || h >= warmLower {
			cls = TemperatureWarm
		}
		if c < neutralChroma {
			cls = TemperatureNeutral
		}
		out[j] = cls
	}
	return out
}

// TemperatureCounts totals each class over a temperature map.
func TemperatureCounts(m []uint8) (warm, cool, neutral int) {
	for _, v := range m {
		switch v {
		case TemperatureWarm:
			warm++
		case TemperatureCool:
			cool++
		default:
			neutral++
		}
	}
	return warm, cool, neutral
}

// FindValueMode locates the peak bin of a value histogram and a ±2 bin
// window around it, clamped to the valid bin range.
func FindValueMode(hist []int64) (peak, lower, upper int) {
	for i, v := range hist {
		if v > hist[peak] {
			peak = i
		}
	}
	lower = peak - 2
	if lower < 0 {
		lower = 0
	}
	upper = peak + 2
	if upper > len(hist)-1 {
		upper = len(hist) - 1
	}
	return peak, lower, upper
}
