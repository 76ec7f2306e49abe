// Package cluster groups the Lab pixels of an analyzed image into
// dominant-color clusters with k-means.
package cluster

import (
	"math/rand"
	"sort"

	"github.com/chewxy/math32"

	"github.com/atelierlab/groundfinder/internal/colorspace"
)

// Info describes one dominant-color cluster. Rank is the position after
// sorting by descending pixel count and is the identifier all callers
// use; OriginalID is the unranked id the label map references. The
// ranked slice doubles as the rank→original mapping, created once at
// cluster time and never mutated.
type Info struct {
	Rank       int
	OriginalID int
	CenterLab  [3]float32
	CenterLch  [3]float32
	PixelCount int
}

// Options configures a clustering run.
type Options struct {
	K             int
	Seed          int64
	Restarts      int // independent initializations, lowest inertia wins
	MaxIterations int
	Tolerance     float32 // center movement below which a run converges
}

// DefaultOptions returns the pipeline defaults. The fixed seed keeps
// results reproducible for identical input arrays.
func DefaultOptions() Options {
	return Options{
		K:             5,
		Seed:          17,
		Restarts:      4,
		MaxIterations: 30,
		Tolerance:     0.25,
	}
}

// Run clusters a flat Lab array (len = n*3) into opts.K clusters.
// It returns the per-pixel label map referencing original cluster ids,
// and the cluster records re-sorted by descending pixel count.
func Run(lab []float32, opts Options) ([]int32, []Info) {
	n := len(lab) / 3
	k := opts.K
	if k > n {
		k = n
	}

	var bestLabels []int32
	var bestCenters [][3]float32
	bestInertia := float32(math32.MaxFloat32)

	for r := 0; r < opts.Restarts; r++ {
		rng := rand.New(rand.NewSource(opts.Seed + int64(r)))
		centers := seedCenters(lab, n, k, rng)
		labels, inertia := lloyd(lab, n, centers, opts.MaxIterations, opts.Tolerance)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
			bestCenters = centers
		}
	}

	counts := make([]int, k)
	for _, l := range bestLabels {
		counts[l]++
	}

	clusters := make([]Info, k)
	for i := 0; i < k; i++ {
		lch := colorspace.LabToLch(bestCenters[i][:])
		clusters[i] = Info{
			OriginalID: i,
			CenterLab:  bestCenters[i],
			CenterLch:  [3]float32{lch[0], lch[1], lch[2]},
			PixelCount: counts[i],
		}
	}
	sort.SliceStable(clusters, func(a, b int) bool {
		return clusters[a].PixelCount > clusters[b].PixelCount
	})
	for i := range clusters {
		clusters[i].Rank = i
	}

	return bestLabels, clusters
}

// seedCenters picks initial centers with k-means++ weighting: each next
// center is drawn proportionally to the squared distance from the
// nearest already-chosen center.
func seedCenters(lab []float32, n, k int, rng *rand.Rand) [][3]float32 {
	centers := make([][3]float32, 0, k)
	first := rng.Intn(n)
	centers = append(centers, point(lab, first))

	dist := make([]float32, n)
	for i := 0; i < n; i++ {
		dist[i] = sqDist(lab, i, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, d := range dist {
			total += float64(d)
		}
		var next int
		if total == 0 {
			next = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			var acc float64
			for i, d := range dist {
				acc += float64(d)
				if acc >= target {
					next = i
					break
				}
			}
		}
		c := point(lab, next)
		centers = append(centers, c)
		for i := 0; i < n; i++ {
			if d := sqDist(lab, i, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centers
}

// lloyd iterates assignment and center updates until centers move less
// than tol or maxIter is reached, mutating centers in place. It returns
// the final labels and the total inertia (sum of squared distances).
func lloyd(lab []float32, n int, centers [][3]float32, maxIter int, tol float32) ([]int32, float32) {
	k := len(centers)
	labels := make([]int32, n)
	sums := make([][3]float64, k)
	counts := make([]int, k)

	var inertia float32
	for iter := 0; iter < maxIter; iter++ {
		inertia = 0
		for i := range sums {
			sums[i] = [3]float64{}
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			best := int32(0)
			bestD := sqDist(lab, i, centers[0])
			for c := 1; c < k; c++ {
				if d := sqDist(lab, i, centers[c]); d < bestD {
					bestD = d
					best = int32(c)
				}
			}
			labels[i] = best
			inertia += bestD
			sums[best][0] += float64(lab[i*3])
			sums[best][1] += float64(lab[i*3+1])
			sums[best][2] += float64(lab[i*3+2])
			counts[best]++
		}

		var moved float32
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Empty cluster keeps its center; its count stays zero.
				continue
			}
			next := [3]float32{
				float32(sums[c][0] / float64(counts[c])),
				float32(sums[c][1] / float64(counts[c])),
				float32(sums[c][2] / float64(counts[c])),
			}
			if d := colorspace.LabDistance(centers[c], next); d > moved {
				moved = d
			}
			centers[c] = next
		}
		if moved < tol {
			break
		}
	}
	return labels, inertia
}

func point(lab []float32, i int) [3]float32 {
	return [3]float32{lab[i*3], lab[i*3+1], lab[i*3+2]}
}

func sqDist(lab []float32, i int, c [3]float32) float32 {
	dl := lab[i*3] - c[0]
	da := lab[i*3+1] - c[1]
	db := lab[i*3+2] - c[2]
	return dl*dl + da*da + db*db
}
