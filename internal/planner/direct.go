package planner

import (
	"math"

	"github.com/golang/geo/r2"

	"robot-navigator/internal/naverr"
)

// DirectWalk steps Stride pixels at a time straight toward goal. A step that would come
// within DirectClearance of an obstacle is replaced by a step along the axis with the larger
// remaining delta. The walk stops within RobotRadius of goal or after DirectMaxPoints points,
// in which case the partial path is returned together with a PlanningFailure.
func DirectWalk(start, goal r2.Point, idx *ObstacleIndex, cfg ContinuousConfig) ([]r2.Point, error) {
	maxPoints := cfg.DirectMaxPoints
	if maxPoints <= 0 {
		maxPoints = 100
	}
	path := []r2.Point{start}
	current := start

	for distance(current, goal) > cfg.RobotRadius {
		if len(path) >= maxPoints {
			return path, naverr.New(naverr.PlanningFailure,
				"direct walk capped at %d points, %.1f px short of goal", maxPoints, distance(current, goal))
		}

		delta := goal.Sub(current)
		dist := delta.Norm()
		if dist == 0 {
			break
		}
		next := clampToCanvas(current.Add(delta.Mul(cfg.Stride/dist)), cfg)

		if !idx.Clear(next, cfg.DirectClearance) {
			next = current
			if math.Abs(delta.X) > math.Abs(delta.Y) {
				next.X += math.Copysign(cfg.Stride, delta.X)
			} else {
				next.Y += math.Copysign(cfg.Stride, delta.Y)
			}
			next = clampToCanvas(next, cfg)
		}

		current = next
		path = append(path, current)
	}
	return path, nil
}

func clampToCanvas(p r2.Point, cfg ContinuousConfig) r2.Point {
	return r2.Point{
		X: math.Max(0, math.Min(cfg.CanvasWidth-1, p.X)),
		Y: math.Max(0, math.Min(cfg.CanvasHeight-1, p.Y)),
	}
}
