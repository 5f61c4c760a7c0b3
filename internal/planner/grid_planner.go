package planner

import (
	"math"

	"robot-navigator/internal/naverr"
)

// GridPlanner runs A* over the cells of a Grid.
type GridPlanner struct {
	Grid *Grid
}

// NewGridPlanner returns a planner over grid.
func NewGridPlanner(grid *Grid) *GridPlanner {
	return &GridPlanner{Grid: grid}
}

// FindPath returns the cells from start to goal inclusive. Axis moves cost 1, diagonal
// moves cost sqrt(2); the heuristic is Euclidean. Equal-f ties are broken by heap order,
// so among several optimal paths the one returned is not specified.
func (gp *GridPlanner) FindPath(start, goal Cell) ([]Cell, error) {
	g := gp.Grid
	if !g.InBounds(start) || !g.InBounds(goal) {
		return nil, naverr.New(naverr.PlanningFailure, "start %v or goal %v outside %dx%d grid",
			start, goal, g.Cfg.Width, g.Cfg.Height)
	}
	if g.Blocked(start) {
		return nil, naverr.New(naverr.PlanningFailure, "start %v is inside an inflated obstacle", start)
	}
	if g.Blocked(goal) {
		return nil, naverr.New(naverr.PlanningFailure, "goal %v is inside an inflated obstacle", goal)
	}

	path, stats, ok := aStar(start, searchSpace[Cell]{
		neighbors: func(c Cell) []step[Cell] {
			cells := g.Neighbors(c)
			steps := make([]step[Cell], len(cells))
			for i, n := range cells {
				cost := 1.0
				if n.X != c.X && n.Y != c.Y {
					cost = math.Sqrt2
				}
				steps[i] = step[Cell]{To: n, Cost: cost}
			}
			return steps
		},
		heuristic: func(c Cell) float64 { return c.Distance(goal) },
		isGoal:    func(c Cell) bool { return c == goal },
	})
	if !ok {
		return nil, naverr.New(naverr.PlanningFailure, "no grid path from %v to %v (%d cells explored)",
			start, goal, stats.Explored)
	}
	return path, nil
}
