package planner

import (
	"math"

	"github.com/golang/geo/r2"
)

// Connectivity selects the neighbor topology of a search.
type Connectivity int

const (
	// Eight allows axis and diagonal moves.
	Eight Connectivity = 8
	// Four allows axis moves only.
	Four Connectivity = 4
)

var (
	axisMoves     = []Cell{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	diagonalMoves = []Cell{{1, 1}, {-1, -1}, {1, -1}, {-1, 1}}
)

func (c Connectivity) moves() []Cell {
	if c == Four {
		return axisMoves
	}
	return append(append([]Cell{}, axisMoves...), diagonalMoves...)
}

// GridConfig sizes the planning grid and the robot footprint.
type GridConfig struct {
	CellSize     float64      `json:"cell_size"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	RobotSize    float64      `json:"robot_size"`
	Connectivity Connectivity `json:"connectivity"`
}

// Grid is the set of blocked cells for one planning call.
type Grid struct {
	Cfg     GridConfig
	blocked map[Cell]bool
}

// NewGrid inflates obstacles onto a fresh grid. Each obstacle blocks every cell within
// ceil((size + robot) / (2 * cell)) of its center cell, clipped to the grid.
func NewGrid(cfg GridConfig, obstacles []Obstacle) *Grid {
	if cfg.Connectivity == 0 {
		cfg.Connectivity = Eight
	}
	g := &Grid{Cfg: cfg, blocked: make(map[Cell]bool)}
	for _, obs := range obstacles {
		center := g.CellAt(obs.Center)
		margin := InflationMargin(2*obs.Radius, cfg.RobotSize, cfg.CellSize)
		for dx := -margin; dx <= margin; dx++ {
			for dy := -margin; dy <= margin; dy++ {
				c := Cell{center.X + dx, center.Y + dy}
				if g.InBounds(c) {
					g.blocked[c] = true
				}
			}
		}
	}
	return g
}

// InflationMargin returns the number of cells to block around an obstacle center.
func InflationMargin(obstacleSize, robotSize, cellSize float64) int {
	return int(math.Ceil((obstacleSize + robotSize) / (2 * cellSize)))
}

// CellAt converts a pixel coordinate into the cell containing it.
func (g *Grid) CellAt(p r2.Point) Cell {
	return Cell{
		X: int(math.Floor(p.X / g.Cfg.CellSize)),
		Y: int(math.Floor(p.Y / g.Cfg.CellSize)),
	}
}

// PixelOf converts a cell back into the pixel coordinate of its corner.
func (g *Grid) PixelOf(c Cell) r2.Point {
	return r2.Point{X: float64(c.X) * g.Cfg.CellSize, Y: float64(c.Y) * g.Cfg.CellSize}
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Cfg.Width && c.Y >= 0 && c.Y < g.Cfg.Height
}

// Blocked reports whether c is covered by an inflated obstacle.
func (g *Grid) Blocked(c Cell) bool {
	return g.blocked[c]
}

// BlockedCount returns the number of blocked cells.
func (g *Grid) BlockedCount() int {
	return len(g.blocked)
}

// Neighbors returns the in-bounds, unblocked cells reachable from c in one move.
func (g *Grid) Neighbors(c Cell) []Cell {
	moves := g.Cfg.Connectivity.moves()
	neighbors := make([]Cell, 0, len(moves))
	for _, m := range moves {
		n := Cell{c.X + m.X, c.Y + m.Y}
		if g.InBounds(n) && !g.blocked[n] {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// LineClear reports whether the rasterized segment a-b touches no blocked cell.
func (g *Grid) LineClear(a, b Cell) bool {
	for _, c := range Line(a, b) {
		if g.blocked[c] {
			return false
		}
	}
	return true
}
