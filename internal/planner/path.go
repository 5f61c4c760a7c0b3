package planner

import (
	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// LineString converts a pixel path into an orb line string.
func LineString(path []r2.Point) orb.LineString {
	ls := make(orb.LineString, len(path))
	for i, p := range path {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

// PathLength returns the length of a pixel path.
func PathLength(path []r2.Point) float64 {
	return planar.Length(LineString(path))
}

// PathBound returns the bounding box of a pixel path.
func PathBound(path []r2.Point) orb.Bound {
	return LineString(path).Bound()
}

// CellsToPixels converts a grid path into pixel waypoints.
func CellsToPixels(cells []Cell, grid *Grid) []r2.Point {
	points := make([]r2.Point, len(cells))
	for i, c := range cells {
		points[i] = grid.PixelOf(c)
	}
	return points
}
