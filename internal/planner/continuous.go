package planner

import (
	"github.com/golang/geo/r2"

	"robot-navigator/internal/logging"
	"robot-navigator/internal/naverr"
)

// ContinuousConfig parameterizes pixel-space planning.
type ContinuousConfig struct {
	CanvasWidth    float64      `json:"canvas_width"`
	CanvasHeight   float64      `json:"canvas_height"`
	RobotRadius    float64      `json:"robot_radius"`
	SafetyMargin   float64      `json:"safety_margin"`
	MarginStep     float64      `json:"margin_step"`
	MarginAttempts int          `json:"margin_attempts"`
	Stride         float64      `json:"stride"`
	Connectivity   Connectivity `json:"connectivity"`

	DirectClearance float64 `json:"direct_clearance"`
	DirectMaxPoints int     `json:"direct_max_points"`
}

// DefaultContinuousConfig matches the 650x600 simulator canvas.
func DefaultContinuousConfig() ContinuousConfig {
	return ContinuousConfig{
		CanvasWidth:     650,
		CanvasHeight:    600,
		RobotRadius:     18,
		SafetyMargin:    35,
		MarginStep:      10,
		MarginAttempts:  3,
		Stride:          8,
		Connectivity:    Four,
		DirectClearance: 20,
		DirectMaxPoints: 100,
	}
}

// Margins returns the escalation ladder, e.g. 35, 25, 15.
func (cfg ContinuousConfig) Margins() []float64 {
	attempts := max(cfg.MarginAttempts, 1)
	margins := make([]float64, attempts)
	for i := range margins {
		margins[i] = cfg.SafetyMargin - float64(i)*cfg.MarginStep
	}
	return margins
}

// ContinuousResult is the outcome of adaptive planning.
type ContinuousResult struct {
	Path []r2.Point
	// Margin is the safety margin the path was found at. Unset when Fallback is true.
	Margin float64
	// Fallback is true when the direct walker produced the path.
	Fallback bool
}

// ContinuousPlanner runs A* directly on pixel coordinates.
type ContinuousPlanner struct {
	Cfg    ContinuousConfig
	logger logging.Logger
}

// NewContinuousPlanner returns a planner for cfg.
func NewContinuousPlanner(cfg ContinuousConfig, logger logging.Logger) *ContinuousPlanner {
	if cfg.Connectivity == 0 {
		cfg.Connectivity = Four
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ContinuousPlanner{Cfg: cfg, logger: logger}
}

func (cp *ContinuousPlanner) inCanvas(p r2.Point) bool {
	return p.X >= 0 && p.X < cp.Cfg.CanvasWidth && p.Y >= 0 && p.Y < cp.Cfg.CanvasHeight
}

// FindPath searches at a single margin. The path ends at the first point within
// 2*RobotRadius of goal.
func (cp *ContinuousPlanner) FindPath(start, goal r2.Point, idx *ObstacleIndex, margin float64) ([]r2.Point, error) {
	stride := cp.Cfg.Stride
	moves := cp.Cfg.Connectivity.moves()
	reach := 2 * cp.Cfg.RobotRadius

	path, stats, ok := aStar(start, searchSpace[r2.Point]{
		neighbors: func(p r2.Point) []step[r2.Point] {
			steps := make([]step[r2.Point], 0, len(moves))
			for _, m := range moves {
				d := r2.Point{X: float64(m.X), Y: float64(m.Y)}.Mul(stride)
				n := p.Add(d)
				if !cp.inCanvas(n) || !idx.Clear(n, margin) {
					continue
				}
				steps = append(steps, step[r2.Point]{To: n, Cost: d.Norm()})
			}
			return steps
		},
		heuristic: func(p r2.Point) float64 { return distance(p, goal) },
		isGoal:    func(p r2.Point) bool { return distance(p, goal) < reach },
	})
	if !ok {
		return nil, naverr.New(naverr.PlanningFailure, "no path at margin %.0f (%d nodes explored)",
			margin, stats.Explored)
	}
	return path, nil
}

// Plan tries each margin of the ladder in turn and falls back to DirectWalk when all fail.
// The first margin that succeeds wins; failed attempts are never returned.
func (cp *ContinuousPlanner) Plan(start, goal r2.Point, obstacles []Obstacle) (ContinuousResult, error) {
	idx := NewObstacleIndex(obstacles)

	for _, margin := range cp.Cfg.Margins() {
		path, err := cp.FindPath(start, goal, idx, margin)
		if err == nil {
			cp.logger.Debugw("continuous path found", "margin", margin, "points", len(path))
			return ContinuousResult{Path: path, Margin: margin}, nil
		}
		cp.logger.Infof("no path found with margin %.0f, escalating", margin)
	}

	cp.logger.Warnf("margin ladder exhausted, trying direct approach")
	path, err := DirectWalk(start, goal, idx, cp.Cfg)
	return ContinuousResult{Path: path, Fallback: true}, err
}
