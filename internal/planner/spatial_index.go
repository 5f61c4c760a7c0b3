package planner

import (
	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/r2"
)

// minExtent keeps zero-radius obstacles representable as R-tree rectangles.
const minExtent = 1e-6

// obstacleEntry wraps an obstacle for R-tree storage.
type obstacleEntry struct {
	Obstacle Obstacle
	BBox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// ObstacleIndex answers clearance queries against an immutable obstacle set.
type ObstacleIndex struct {
	tree      *rtreego.Rtree
	obstacles []Obstacle
}

// NewObstacleIndex builds an index over obstacles. The slice is copied.
func NewObstacleIndex(obstacles []Obstacle) *ObstacleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, obs := range obstacles {
		bbox, err := squareAround(obs.Center, obs.Radius)
		if err == nil {
			tree.Insert(&obstacleEntry{Obstacle: obs, BBox: bbox})
		}
	}

	return &ObstacleIndex{tree: tree, obstacles: append([]Obstacle(nil), obstacles...)}
}

// Len returns the number of indexed obstacles.
func (idx *ObstacleIndex) Len() int {
	return len(idx.obstacles)
}

// Obstacles returns a copy of the indexed obstacles.
func (idx *ObstacleIndex) Obstacles() []Obstacle {
	return append([]Obstacle(nil), idx.obstacles...)
}

// Clear reports whether p keeps at least margin distance from the edge of every obstacle.
func (idx *ObstacleIndex) Clear(p r2.Point, margin float64) bool {
	return len(idx.Violations(p, margin)) == 0
}

// Violations returns the obstacles whose edge is closer than margin to p.
func (idx *ObstacleIndex) Violations(p r2.Point, margin float64) []Obstacle {
	if idx.tree.Size() == 0 {
		return nil
	}
	query, err := squareAround(p, max(margin, 0))
	if err != nil {
		return nil
	}

	var hits []Obstacle
	for _, item := range idx.tree.SearchIntersect(query) {
		obs := item.(*obstacleEntry).Obstacle
		if obs.Clearance(p) < margin {
			hits = append(hits, obs)
		}
	}
	return hits
}

// squareAround computes the axis-aligned square of half-width r centered on c.
func squareAround(c r2.Point, r float64) (rtreego.Rect, error) {
	half := r + minExtent
	return rtreego.NewRect(
		rtreego.Point{c.X - half, c.Y - half},
		[]float64{2 * half, 2 * half},
	)
}
