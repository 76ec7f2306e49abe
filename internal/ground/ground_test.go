package ground

import (
	"errors"
	"testing"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/cluster"
	"github.com/atelierlab/groundfinder/internal/mask"
)

func clusterResult(clusters []cluster.Info) *analysis.Result {
	return &analysis.Result{Clusters: clusters}
}

func TestDetectCluster(t *testing.T) {
	win := DefaultWindow()

	tests := []struct {
		name     string
		clusters []cluster.Info
		wantRank int
		wantOK   bool
	}{
		{
			name: "mid-value low-chroma cluster qualifies",
			clusters: []cluster.Info{
				{Rank: 0, CenterLch: [3]float32{50, 4, 30}, PixelCount: 100},
			},
			wantRank: 0,
			wantOK:   true,
		},
		{
			name: "largest eligible wins over smaller eligible",
			clusters: []cluster.Info{
				{Rank: 0, CenterLch: [3]float32{80, 2, 0}, PixelCount: 300}, // too light
				{Rank: 1, CenterLch: [3]float32{45, 3, 10}, PixelCount: 200},
				{Rank: 2, CenterLch: [3]float32{55, 5, 40}, PixelCount: 150},
			},
			wantRank: 1,
			wantOK:   true,
		},
		{
			name: "too dark excluded",
			clusters: []cluster.Info{
				{Rank: 0, CenterLch: [3]float32{20, 2, 0}, PixelCount: 500},
			},
			wantOK: false,
		},
		{
			name: "too chromatic excluded",
			clusters: []cluster.Info{
				{Rank: 0, CenterLch: [3]float32{50, 30, 60}, PixelCount: 500},
			},
			wantOK: false,
		},
		{
			name: "chroma boundary exclusive",
			clusters: []cluster.Info{
				{Rank: 0, CenterLch: [3]float32{50, 8, 60}, PixelCount: 500},
			},
			wantOK: false,
		},
		{
			name: "lightness boundaries inclusive",
			clusters: []cluster.Info{
				{Rank: 0, CenterLch: [3]float32{35, 2, 0}, PixelCount: 10},
				{Rank: 1, CenterLch: [3]float32{65, 2, 0}, PixelCount: 20},
			},
			wantRank: 1,
			wantOK:   true,
		},
		{
			name:     "no clusters",
			clusters: nil,
			wantOK:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, ok := DetectCluster(clusterResult(tt.clusters), win)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && rank != tt.wantRank {
				t.Errorf("rank: got %d, want %d", rank, tt.wantRank)
			}
		})
	}
}

func TestMaskFromCluster(t *testing.T) {
	res := &analysis.Result{
		Width:  2,
		Height: 1,
		Lab: []float32{
			50, 2, 2,
			80, 0, 40,
		},
		Clusters: []cluster.Info{
			{Rank: 0, OriginalID: 0, CenterLab: [3]float32{50, 0, 0}, PixelCount: 1},
		},
	}

	t.Run("selects pixels near center", func(t *testing.T) {
		m, err := MaskFromCluster(res, 0, 6.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.Bits[0] || m.Bits[1] {
			t.Errorf("got %v, want [true false]", m.Bits)
		}
	})

	t.Run("zero tolerance uses default", func(t *testing.T) {
		m, err := MaskFromCluster(res, 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.Bits[0] {
			t.Error("near pixel should fall inside the default tolerance")
		}
	})

	t.Run("rank out of range", func(t *testing.T) {
		_, err := MaskFromCluster(res, 3, 6.0)
		if !errors.Is(err, mask.ErrRankOutOfRange) {
			t.Fatalf("got %v, want ErrRankOutOfRange", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	m := mask.New(4, 4)
	m.Set(0, 0, true)
	m.Set(1, 0, true)
	m.Set(2, 2, true)
	m.Set(3, 3, true)

	cov := Summarize(m)
	if cov.Pixels != 4 {
		t.Errorf("pixels: got %d, want 4", cov.Pixels)
	}
	if cov.Fraction != 0.25 {
		t.Errorf("fraction: got %f, want 0.25", cov.Fraction)
	}

	empty := Summarize(mask.New(0, 0))
	if empty.Pixels != 0 || empty.Fraction != 0 {
		t.Errorf("empty mask: got %+v", empty)
	}
}
