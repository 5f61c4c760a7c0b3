// Package render draws a navigation scene to PNG in the simulator's own palette, so a
// rendered scene reads back through the vision detector.
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"robot-navigator/internal/navigator"
	"robot-navigator/internal/planner"
)

var (
	robotColor    = color.RGBA{255, 0, 0, 255}
	goalColor     = color.RGBA{0, 200, 0, 255}
	obstacleColor = color.RGBA{20, 20, 20, 255}
	blockedColor  = color.RGBA{225, 225, 225, 255}
	plannedColor  = color.RGBA{120, 160, 255, 255}
	executedColor = color.RGBA{0, 0, 160, 255}
)

// Scene is everything one picture shows. Coordinates are canvas pixels.
type Scene struct {
	Width, Height int
	// Grid, when set, shades the inflated cells.
	Grid      *planner.Grid
	Obstacles []planner.Obstacle
	// PointSize is the drawn diameter of obstacles with no radius.
	PointSize   float64
	Robot       r2.Point
	Goal        r2.Point
	RobotRadius float64
	Planned     [][]r2.Point
	Executed    []r2.Point
}

// FromResult builds the scene of a finished run. Nil obstacles means the ones the last
// cycle planned around.
func FromResult(res *navigator.Result, width, height int, obstacles []planner.Obstacle) Scene {
	s := Scene{
		Width:       width,
		Height:      height,
		Obstacles:   obstacles,
		PointSize:   25,
		RobotRadius: 18,
		Executed:    res.Executed(),
	}
	for _, c := range res.Cycles {
		s.Planned = append(s.Planned, c.Waypoints)
	}
	if len(res.Cycles) > 0 {
		s.Robot = res.Cycles[0].Robot
		last := res.Cycles[len(res.Cycles)-1]
		s.Goal = last.Goal
		if obstacles == nil {
			s.Obstacles = last.Seen
		}
	}
	return s
}

// Draw renders s.
func Draw(s Scene) image.Image {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetColor(color.White)
	dc.Clear()

	if s.Grid != nil {
		size := s.Grid.Cfg.CellSize
		dc.SetColor(blockedColor)
		for x := 0; x < s.Grid.Cfg.Width; x++ {
			for y := 0; y < s.Grid.Cfg.Height; y++ {
				if c := (planner.Cell{X: x, Y: y}); s.Grid.Blocked(c) {
					dc.DrawRectangle(float64(x)*size, float64(y)*size, size, size)
				}
			}
		}
		dc.Fill()
	}

	for _, p := range s.Planned {
		polyline(dc, p, plannedColor, 1)
	}
	polyline(dc, s.Executed, executedColor, 2)

	dc.SetColor(obstacleColor)
	for _, o := range s.Obstacles {
		size := 2 * o.Radius
		if size == 0 {
			size = s.PointSize
		}
		dc.DrawRectangle(o.Center.X-size/2, o.Center.Y-size/2, size, size)
	}
	dc.Fill()

	radius := s.RobotRadius
	if radius <= 0 {
		radius = 18
	}
	dc.SetColor(goalColor)
	dc.DrawCircle(s.Goal.X, s.Goal.Y, 15)
	dc.Fill()
	dc.SetColor(robotColor)
	dc.DrawCircle(s.Robot.X, s.Robot.Y, radius)
	dc.Fill()

	return dc.Image()
}

func polyline(dc *gg.Context, path []r2.Point, c color.Color, width float64) {
	if len(path) < 2 {
		return
	}
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.MoveTo(path[0].X, path[0].Y)
	for _, p := range path[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

// SavePNG renders s into filename.
func SavePNG(filename string, s Scene) error {
	if s.Width <= 0 || s.Height <= 0 {
		return errors.Errorf("cannot render a %dx%d scene", s.Width, s.Height)
	}
	if err := gg.SavePNG(filename, Draw(s)); err != nil {
		return errors.Wrapf(err, "saving %s", filename)
	}
	return nil
}
