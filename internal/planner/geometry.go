package planner

import (
	"math"

	"github.com/golang/geo/r2"
)

// Cell is a discrete grid position.
type Cell struct {
	X, Y int
}

// Obstacle is a blocked disc in pixel space. Radius already includes any inherent size;
// planners add their own safety margin on top of it.
type Obstacle struct {
	Center r2.Point `json:"center"`
	Radius float64  `json:"radius"`
}

// Distance calculates Euclidean distance between two cells.
func (c Cell) Distance(other Cell) float64 {
	dx := float64(c.X - other.X)
	dy := float64(c.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// distance calculates Euclidean distance between two pixel points.
func distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// Clearance returns how far p is from the edge of o. Negative values are inside.
func (o Obstacle) Clearance(p r2.Point) float64 {
	return distance(o.Center, p) - o.Radius
}

// Line rasterizes the segment a-b with Bresenham's algorithm, endpoints included.
func Line(a, b Cell) []Cell {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y

	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errTerm := dx - dy

	cells := make([]Cell, 0, max(dx, dy)+1)
	for {
		cells = append(cells, Cell{x0, y0})
		if x0 == x1 && y0 == y1 {
			return cells
		}
		e2 := 2 * errTerm
		if e2 > -dy {
			errTerm -= dy
			x0 += sx
		}
		if e2 < dx {
			errTerm += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
