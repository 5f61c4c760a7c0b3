package navigator

import (
	"github.com/golang/geo/r2"

	"robot-navigator/internal/logging"
	"robot-navigator/internal/planner"
)

// Plan is one planned route in pixels.
type Plan struct {
	Waypoints []r2.Point `json:"waypoints"`
	// RawLength is the number of points the search produced before optimization.
	RawLength int `json:"raw_length"`
	// Margin is the safety margin a continuous plan was found at.
	Margin float64 `json:"margin,omitempty"`
	// Fallback is true when the continuous planner had to walk directly.
	Fallback bool `json:"fallback,omitempty"`
}

// Strategy turns a scene into a route.
type Strategy interface {
	// Plan returns a route from scene.Robot to scene.Goal. When it fails it may still return
	// a partial route alongside the error.
	Plan(scene Scene) (Plan, error)
}

// GridStrategy plans on a cell grid and shortens the result with line-of-sight shortcuts.
type GridStrategy struct {
	Cfg      planner.GridConfig
	Optimize bool
	logger   logging.Logger
}

// NewGridStrategy returns an optimizing grid strategy.
func NewGridStrategy(cfg planner.GridConfig, logger logging.Logger) *GridStrategy {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GridStrategy{Cfg: cfg, Optimize: true, logger: logger}
}

// Plan rebuilds the grid from scene.Obstacles and searches it.
func (s *GridStrategy) Plan(scene Scene) (Plan, error) {
	grid := planner.NewGrid(s.Cfg, scene.Obstacles)
	start, goal := grid.CellAt(scene.Robot), grid.CellAt(scene.Goal)

	cells, err := planner.NewGridPlanner(grid).FindPath(start, goal)
	if err != nil {
		return Plan{}, err
	}
	s.logger.Infof("path found with %d steps", len(cells))

	raw := len(cells)
	if s.Optimize {
		cells = planner.OptimizePath(cells, grid)
		s.logger.Infof("optimized path has %d steps", len(cells))
	}
	return Plan{Waypoints: planner.CellsToPixels(cells, grid), RawLength: raw}, nil
}

// VisionStrategy plans in pixels with margin escalation.
type VisionStrategy struct {
	Planner *planner.ContinuousPlanner
}

// NewVisionStrategy returns a strategy for cfg.
func NewVisionStrategy(cfg planner.ContinuousConfig, logger logging.Logger) *VisionStrategy {
	return &VisionStrategy{Planner: planner.NewContinuousPlanner(cfg, logger)}
}

// Plan runs the margin ladder. A capped direct walk returns its partial path and an error.
func (s *VisionStrategy) Plan(scene Scene) (Plan, error) {
	res, err := s.Planner.Plan(scene.Robot, scene.Goal, scene.Obstacles)
	return Plan{
		Waypoints: res.Path,
		RawLength: len(res.Path),
		Margin:    res.Margin,
		Fallback:  res.Fallback,
	}, err
}
