package cluster

import (
	"testing"

	"github.com/atelierlab/groundfinder/internal/colorspace"
)

// threeBlobs builds a flat Lab array with three well-separated groups of
// the given sizes.
func threeBlobs(n1, n2, n3 int) []float32 {
	centers := [3][3]float32{
		{20, 0, 0},
		{55, 30, 20},
		{85, -20, 40},
	}
	sizes := []int{n1, n2, n3}
	lab := make([]float32, 0, (n1+n2+n3)*3)
	for g, size := range sizes {
		for i := 0; i < size; i++ {
			// Small deterministic jitter keeps points distinct but tight.
			j := float32(i%5) * 0.1
			lab = append(lab, centers[g][0]+j, centers[g][1]-j, centers[g][2]+j)
		}
	}
	return lab
}

func TestRun(t *testing.T) {
	opts := DefaultOptions()
	opts.K = 3
	lab := threeBlobs(60, 30, 10)
	labels, clusters := Run(lab, opts)

	t.Run("label per pixel", func(t *testing.T) {
		if len(labels) != 100 {
			t.Fatalf("got %d labels, want 100", len(labels))
		}
	})

	t.Run("counts sum to pixel count", func(t *testing.T) {
		sum := 0
		for _, c := range clusters {
			sum += c.PixelCount
		}
		if sum != 100 {
			t.Errorf("got %d, want 100", sum)
		}
	})

	t.Run("ranked by descending pixel count", func(t *testing.T) {
		for i := 1; i < len(clusters); i++ {
			if clusters[i].PixelCount > clusters[i-1].PixelCount {
				t.Errorf("rank %d has more pixels than rank %d", i, i-1)
			}
		}
		for i, c := range clusters {
			if c.Rank != i {
				t.Errorf("slice position %d holds rank %d", i, c.Rank)
			}
		}
	})

	t.Run("separated blobs recovered", func(t *testing.T) {
		if clusters[0].PixelCount != 60 ||
			clusters[1].PixelCount != 30 ||
			clusters[2].PixelCount != 10 {
			t.Errorf("got counts %d/%d/%d, want 60/30/10",
				clusters[0].PixelCount, clusters[1].PixelCount, clusters[2].PixelCount)
		}
		if l := clusters[0].CenterLab[0]; l < 18 || l > 22 {
			t.Errorf("largest cluster center L = %f, want near 20", l)
		}
	})

	t.Run("labels reference original ids", func(t *testing.T) {
		counts := make(map[int32]int)
		for _, l := range labels {
			counts[l]++
		}
		for _, c := range clusters {
			if counts[int32(c.OriginalID)] != c.PixelCount {
				t.Errorf("original id %d: label count %d, cluster count %d",
					c.OriginalID, counts[int32(c.OriginalID)], c.PixelCount)
			}
		}
	})

	t.Run("center lch matches center lab", func(t *testing.T) {
		for _, c := range clusters {
			lch := colorspace.LabToLch(c.CenterLab[:])
			for i := 0; i < 3; i++ {
				if lch[i] != c.CenterLch[i] {
					t.Errorf("cluster %d lch[%d]: got %f, want %f",
						c.Rank, i, c.CenterLch[i], lch[i])
				}
			}
		}
	})
}

func TestRunDeterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.K = 3
	lab := threeBlobs(40, 40, 20)

	labels1, clusters1 := Run(lab, opts)
	labels2, clusters2 := Run(lab, opts)

	for i := range labels1 {
		if labels1[i] != labels2[i] {
			t.Fatalf("labels diverge at %d: %d vs %d", i, labels1[i], labels2[i])
		}
	}
	for i := range clusters1 {
		if clusters1[i] != clusters2[i] {
			t.Fatalf("clusters diverge at rank %d: %+v vs %+v", i, clusters1[i], clusters2[i])
		}
	}
}

func TestRunFewerPixelsThanK(t *testing.T) {
	lab := []float32{
		10, 0, 0,
		90, 0, 0,
	}
	opts := DefaultOptions()
	labels, clusters := Run(lab, opts)
	if len(labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(labels))
	}
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want k clamped to 2", len(clusters))
	}
}

func TestRunSingleColor(t *testing.T) {
	lab := make([]float32, 0, 30)
	for i := 0; i < 10; i++ {
		lab = append(lab, 50, 5, -5)
	}
	opts := DefaultOptions()
	opts.K = 3
	_, clusters := Run(lab, opts)

	sum := 0
	for _, c := range clusters {
		sum += c.PixelCount
	}
	if sum != 10 {
		t.Errorf("counts sum: got %d, want 10", sum)
	}
	if clusters[0].PixelCount != 10 {
		t.Errorf("expected all pixels in one cluster, top has %d", clusters[0].PixelCount)
	}
}
