// Package palette holds the curated ground-color mixes and matches
// arbitrary Lab colors against them by perceptual distance.
package palette

import (
	_ "embed"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/atelierlab/groundfinder/internal/colorspace"
)

//go:embed palette.yaml
var paletteYAML []byte

// Entry is one curated ground color. Lab, Lch and RGB are derived from
// the hex code at load time; entries are immutable and shared read-only
// across requests.
type Entry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Hex    string `yaml:"hex"`
	Recipe string `yaml:"recipe"`
	Notes  string `yaml:"notes"`

	RGB [3]uint8   `yaml:"-"`
	Lab [3]float32 `yaml:"-"`
	Lch [3]float32 `yaml:"-"`
}

// Palette is the fixed lookup table, loaded once at process start.
type Palette struct {
	entries []Entry
}

// Load parses the embedded palette data and derives the color
// coordinates of every entry.
func Load() (*Palette, error) {
	var entries []Entry
	if err := yaml.Unmarshal(paletteYAML, &entries); err != nil {
		return nil, fmt.Errorf("parsing palette data: %w", err)
	}
	for i := range entries {
		rgb, err := colorspace.HexToRGB(entries[i].Hex)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: %w", entries[i].ID, err)
		}
		lab := colorspace.RGBToLab(rgb[:])
		lch := colorspace.LabToLch(lab)
		entries[i].RGB = rgb
		entries[i].Lab = [3]float32{lab[0], lab[1], lab[2]}
		entries[i].Lch = [3]float32{lch[0], lch[1], lch[2]}
	}
	return &Palette{entries: entries}, nil
}

// Entries returns the loaded entries in palette order.
func (p *Palette) Entries() []Entry {
	return p.entries
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Match is a palette entry with its distance to the queried color.
type Match struct {
	Entry
	DeltaE float64
}

// DeltaE computes the perceptual distance between two Lab colors with
// the lightness difference weighted 1.5× relative to a/b: value
// mismatches matter more than hue or chroma mismatches when judging
// ground-color suitability.
func DeltaE(a, b [3]float32) float64 {
	dl := 1.5 * float64(a[0]-b[0])
	da := float64(a[1] - b[1])
	db := float64(a[2] - b[2])
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Match ranks every entry by distance to lab, ascending, and returns the
// first topN. Ties keep original palette order.
func (p *Palette) Match(lab [3]float32, topN int) []Match {
	matches := make([]Match, len(p.entries))
	for i, e := range p.entries {
		matches[i] = Match{Entry: e, DeltaE: DeltaE(lab, e.Lab)}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].DeltaE < matches[b].DeltaE
	})
	if topN < len(matches) {
		matches = matches[:topN]
	}
	return matches
}

// ValueStepLabel names a value decile step (1–9) for ground suggestions.
func ValueStepLabel(step int) string {
	labels := map[int]string{
		1: "Deep shadow",
		2: "Shadow",
		3: "Low mid",
		4: "Mid",
		5: "High mid",
		6: "Light",
		7: "High light",
		8: "Very light",
		9: "Highlight",
	}
	if label, ok := labels[step]; ok {
		return label
	}
	return fmt.Sprintf("Step %d", step)
}
