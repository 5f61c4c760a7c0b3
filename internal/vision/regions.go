package vision

import (
	"image"

	"github.com/golang/geo/r2"
)

// Region is one 8-connected component of a mask.
type Region struct {
	Area int
	// Boundary counts the pixels with at least one 4-neighbour outside the region.
	Boundary int
	Centroid r2.Point
	Bounds   image.Rectangle
}

// ContourArea is the area enclosed by the contour through the boundary pixel centers,
// Area - Boundary/2 - 1 by Pick's theorem. An n×n square encloses (n-1)². Holes are ignored.
func (r Region) ContourArea() float64 {
	if r.Degenerate() {
		return 0
	}
	return max(0, float64(r.Area)-float64(r.Boundary)/2-1)
}

// Degenerate reports whether the region is a single row or column and so encloses no area.
func (r Region) Degenerate() bool {
	return r.Area == 0 || r.Bounds.Dx() <= 1 || r.Bounds.Dy() <= 1
}

// Regions labels the 8-connected components of m. Centroids are the mean pixel index, so a
// blob covering pixels 90..110 is centered on 100.
func Regions(m *Mask) []Region {
	seen := make([]bool, len(m.bits))
	var regions []Region
	queue := []image.Point{}

	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			indx := m.index(x, y)
			if seen[indx] || !m.bits[indx] {
				continue
			}
			seen[indx] = true
			queue = append(queue[:0], image.Point{x, y})
			x0, y0, x1, y1 := x, y, x, y // the bounding box of the segment
			var sumX, sumY float64
			area, boundary := 0, 0
			for len(queue) != 0 {
				pt := queue[0]
				queue = queue[1:]
				area++
				sumX += float64(pt.X)
				sumY += float64(pt.Y)
				if !m.At(pt.X-1, pt.Y) || !m.At(pt.X+1, pt.Y) || !m.At(pt.X, pt.Y-1) || !m.At(pt.X, pt.Y+1) {
					boundary++
				}
				x0, y0 = min(x0, pt.X), min(y0, pt.Y)
				x1, y1 = max(x1, pt.X), max(y1, pt.Y)
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := pt.X+dx, pt.Y+dy
						if !m.At(nx, ny) {
							continue
						}
						ni := m.index(nx, ny)
						if seen[ni] {
							continue
						}
						seen[ni] = true
						queue = append(queue, image.Point{nx, ny})
					}
				}
			}
			regions = append(regions, Region{
				Area:     area,
				Boundary: boundary,
				Centroid: r2.Point{X: sumX / float64(area), Y: sumY / float64(area)},
				Bounds:   image.Rect(x0, y0, x1+1, y1+1),
			})
		}
	}
	return regions
}
