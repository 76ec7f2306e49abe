// Package analysis runs the full color-analysis pipeline over uploaded
// image bytes and owns the resulting immutable record.
package analysis

import (
	"image"

	"github.com/google/uuid"

	"github.com/atelierlab/groundfinder/internal/cluster"
	"github.com/atelierlab/groundfinder/internal/colorspace"
	"github.com/atelierlab/groundfinder/internal/imaging"
	"github.com/atelierlab/groundfinder/internal/summary"
)

// Options configures an analysis run. Zero values fall back to the
// pipeline defaults via DefaultOptions.
type Options struct {
	MaxEdge       int
	Clusters      int
	Seed          int64
	WarmSpan      float32
	NeutralChroma float32
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		MaxEdge:       imaging.MaxAnalysisEdge,
		Clusters:      5,
		Seed:          17,
		WarmSpan:      summary.DefaultWarmSpan,
		NeutralChroma: summary.DefaultNeutralChroma,
	}
}

// normalize fills unset fields with the pipeline defaults.
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.MaxEdge <= 0 {
		o.MaxEdge = def.MaxEdge
	}
	if o.Clusters <= 0 {
		o.Clusters = def.Clusters
	}
	if o.Seed == 0 {
		o.Seed = def.Seed
	}
	if o.WarmSpan <= 0 {
		o.WarmSpan = def.WarmSpan
	}
	if o.NeutralChroma <= 0 {
		o.NeutralChroma = def.NeutralChroma
	}
	return o
}

// Result is the complete analysis of one uploaded image. It is created
// once, never mutated afterwards, and shared read-only; the array fields
// are borrowed views that callers must not write through.
type Result struct {
	ID             string
	Original       *image.RGBA // full resolution, kept for final rendering
	Analysis       *image.RGBA // working copy, longer edge capped
	DownscaleRatio float64

	// Analysis-resolution dimensions; all flat arrays below are row-major
	// over Width×Height.
	Width  int
	Height int

	Lab         []float32 // Width*Height*3
	Lch         []float32 // Width*Height*3
	ValueHist   []int64   // 256 bins over L* in [0,100]
	HueHist     []int64   // 360 bins over H in [0,360)
	Temperature []uint8   // Width*Height, summary.Temperature* classes
	Labels      []int32   // Width*Height, original cluster ids
	Clusters    []cluster.Info
}

// Analyze decodes the uploaded bytes and runs the pipeline: downsample,
// color conversion, distributions, temperature map and clustering.
func Analyze(data []byte, opts Options) (*Result, error) {
	opts = opts.normalize()
	original, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}

	working, scale := imaging.Downsample(original, opts.MaxEdge)
	w := working.Bounds().Dx()
	h := working.Bounds().Dy()

	lab := colorspace.RGBToLab(imaging.Pixels(working))
	lch := colorspace.LabToLch(lab)

	labels, clusters := cluster.Run(lab, cluster.Options{
		K:             opts.Clusters,
		Seed:          opts.Seed,
		Restarts:      cluster.DefaultOptions().Restarts,
		MaxIterations: cluster.DefaultOptions().MaxIterations,
		Tolerance:     cluster.DefaultOptions().Tolerance,
	})

	return &Result{
		ID:             uuid.NewString(),
		Original:       original,
		Analysis:       working,
		DownscaleRatio: scale,
		Width:          w,
		Height:         h,
		Lab:            lab,
		Lch:            lch,
		ValueHist:      summary.ValueHistogram(lab, 256),
		HueHist:        summary.HueHistogram(lch, 360),
		Temperature:    summary.ClassifyTemperature(lch, opts.WarmSpan, opts.NeutralChroma),
		Labels:         labels,
		Clusters:       clusters,
	}, nil
}

// LabAt returns the Lab triple of the analysis pixel at flat index i.
func (r *Result) LabAt(i int) [3]float32 {
	return [3]float32{r.Lab[i*3], r.Lab[i*3+1], r.Lab[i*3+2]}
}

// PixelCount returns the number of analysis-resolution pixels.
func (r *Result) PixelCount() int {
	return r.Width * r.Height
}
