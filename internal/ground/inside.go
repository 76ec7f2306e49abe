package ground

import (
	"github.com/chewxy/math32"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/mask"
)

// Edge thresholds tuned for line art: gradients above edgeHigh are
// edges, gradients above edgeLow are kept when connected to one.
const (
	edgeLow  = 60
	edgeHigh = 150
)

// InsideForms refines a ground-color mask to the portion enclosed by
// drawn line/form edges. Flat ground color outside any drawn subject
// should not count as ground used inside a form.
//
// The steps mirror the classic seal-and-fill recipe: edge-detect the
// grayscale working image, dilate and close the edge map to seal small
// gaps, flood-fill the non-edge region from a border corner to find the
// outside, invert for the enclosed region, open it to drop speckle, and
// intersect with the ground mask. Ground-colored pixels within one
// dilation band of an edge are unioned back in: edges consume some
// inside-adjacent ground pixels that should still count.
func InsideForms(res *analysis.Result, groundMask *mask.Mask) *mask.Mask {
	w, h := res.Width, res.Height

	gray := grayscale(res)
	edges := hysteresisEdges(gray, w, h, edgeLow, edgeHigh)
	edges = dilate(edges, 1)
	edges = dilate(edges, 2)
	edges = erode(edges, 2)

	outside := floodOutside(edges)

	enclosed := mask.New(w, h)
	for i := range enclosed.Bits {
		enclosed.Bits[i] = !outside.Bits[i]
	}
	enclosed = erode(enclosed, 1)
	enclosed = dilate(enclosed, 1)

	inside := mask.New(w, h)
	for i := range inside.Bits {
		inside.Bits[i] = enclosed.Bits[i] && groundMask.Bits[i]
	}

	edgeBand := dilate(edges, 1)
	for i := range inside.Bits {
		if edgeBand.Bits[i] && groundMask.Bits[i] {
			inside.Bits[i] = true
		}
	}
	return inside
}

// grayscale collapses the analysis image to 8-bit luma.
func grayscale(res *analysis.Result) []uint8 {
	img := res.Analysis
	w, h := res.Width, res.Height
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			r := float32(row[x*4])
			g := float32(row[x*4+1])
			b := float32(row[x*4+2])
			out[y*w+x] = uint8(0.299*r + 0.587*g + 0.114*b)
		}
	}
	return out
}

// hysteresisEdges computes the Sobel gradient magnitude and keeps strong
// edges plus weak edges 8-connected to a strong one.
func hysteresisEdges(gray []uint8, w, h, low, high int) *mask.Mask {
	magnitude := make([]int, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			gx := -int(gray[i-w-1]) + int(gray[i-w+1]) +
				-2*int(gray[i-1]) + 2*int(gray[i+1]) +
				-int(gray[i+w-1]) + int(gray[i+w+1])
			gy := -int(gray[i-w-1]) - 2*int(gray[i-w]) - int(gray[i-w+1]) +
				int(gray[i+w-1]) + 2*int(gray[i+w]) + int(gray[i+w+1])
			magnitude[i] = int(math32.Sqrt(float32(gx*gx + gy*gy)))
		}
	}

	edges := mask.New(w, h)
	var queue []int
	for i, m := range magnitude {
		if m >= high {
			edges.Bits[i] = true
			queue = append(queue, i)
		}
	}

	// Grow strong edges through weak gradient pixels.
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x := i % w
		y := i / w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if !edges.Bits[ni] && magnitude[ni] >= low {
					edges.Bits[ni] = true
					queue = append(queue, ni)
				}
			}
		}
	}
	return edges
}

// floodOutside flood-fills the non-edge region from a border corner and
// returns the reachable "outside" set. If every corner sits on an edge
// the outside is empty and the whole image counts as enclosed.
func floodOutside(edges *mask.Mask) *mask.Mask {
	w, h := edges.Width, edges.Height
	outside := mask.New(w, h)

	corners := [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}}
	var queue []int
	for _, c := range corners {
		i := c[1]*w + c[0]
		if !edges.Bits[i] {
			queue = append(queue, i)
			outside.Bits[i] = true
			break
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x := i % w
		y := i / w
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if edges.Bits[ni] || outside.Bits[ni] {
				continue
			}
			outside.Bits[ni] = true
			queue = append(queue, ni)
		}
	}
	return outside
}

// dilate grows the selected set by a 3×3 structuring element, iterations
// times.
func dilate(m *mask.Mask, iterations int) *mask.Mask {
	return morph(m, iterations, true)
}

// erode shrinks the selected set by a 3×3 structuring element,
// iterations times.
func erode(m *mask.Mask, iterations int) *mask.Mask {
	return morph(m, iterations, false)
}

func morph(m *mask.Mask, iterations int, grow bool) *mask.Mask {
	w, h := m.Width, m.Height
	cur := m.Clone()
	for it := 0; it < iterations; it++ {
		next := mask.New(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				next.Set(x, y, window3(cur, x, y, grow))
			}
		}
		cur = next
	}
	return cur
}

// window3 scans the 3×3 neighborhood of (x, y). When grow is true it
// reports whether any neighbor is selected (dilation); otherwise whether
// all neighbors are selected (erosion). Out-of-bounds neighbors read as
// unselected.
func window3(m *mask.Mask, x, y int, grow bool) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			v := false
			if nx >= 0 && nx < m.Width && ny >= 0 && ny < m.Height {
				v = m.At(nx, ny)
			}
			if grow && v {
				return true
			}
			if !grow && !v {
				return false
			}
		}
	}
	return !grow
}
