package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"robot-navigator/internal/navigator"
	"robot-navigator/internal/planner"
	"robot-navigator/internal/vision"
)

func sampleScene() Scene {
	return Scene{
		Width:       650,
		Height:      600,
		Obstacles:   []planner.Obstacle{{Center: r2.Point{X: 300, Y: 300}, Radius: 15}},
		Robot:       r2.Point{X: 100, Y: 100},
		Goal:        r2.Point{X: 500, Y: 500},
		RobotRadius: 18,
		Planned:     [][]r2.Point{{{X: 140, Y: 140}, {X: 250, Y: 340}, {X: 460, Y: 460}}},
		Executed:    []r2.Point{{X: 140, Y: 140}, {X: 250, Y: 340}},
	}
}

func TestDrawReadsBackThroughDetector(t *testing.T) {
	det, err := vision.NewDetector(vision.DefaultConfig()).Detect(Draw(sampleScene()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, det.Robot.X, test.ShouldAlmostEqual, 100, 1)
	test.That(t, det.Robot.Y, test.ShouldAlmostEqual, 100, 1)
	test.That(t, det.Goal.X, test.ShouldAlmostEqual, 500, 1)
	test.That(t, det.Goal.Y, test.ShouldAlmostEqual, 500, 1)
	test.That(t, det.Obstacles, test.ShouldHaveLength, 1)
	test.That(t, det.Obstacles[0].X, test.ShouldAlmostEqual, 300, 1)
	test.That(t, det.Obstacles[0].Y, test.ShouldAlmostEqual, 300, 1)
}

func TestDrawShadesBlockedCells(t *testing.T) {
	s := sampleScene()
	s.Grid = planner.NewGrid(planner.GridConfig{CellSize: 10, Width: 65, Height: 60, RobotSize: 18}, s.Obstacles)
	img := Draw(s)

	// (300,300) is inflated by 3 cells, so (275,275) is blocked but not covered by the obstacle.
	test.That(t, color.RGBAModel.Convert(img.At(275, 275)), test.ShouldResemble, color.Color(blockedColor))
	test.That(t, color.RGBAModel.Convert(img.At(600, 50)), test.ShouldResemble, color.Color(color.RGBA{255, 255, 255, 255}))
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.png")
	test.That(t, SavePNG(path, sampleScene()), test.ShouldBeNil)

	img, err := gg.LoadPNG(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 650)

	empty := filepath.Join(t.TempDir(), "empty.png")
	test.That(t, SavePNG(empty, Scene{}), test.ShouldNotBeNil)
	_, err = os.Stat(empty)
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestFromResult(t *testing.T) {
	res := &navigator.Result{Cycles: []navigator.Cycle{
		{Robot: r2.Point{X: 1, Y: 2}, Goal: r2.Point{X: 9, Y: 9}, Waypoints: []r2.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, Executed: 2},
		{Robot: r2.Point{X: 3, Y: 4}, Goal: r2.Point{X: 9, Y: 8}, Waypoints: []r2.Point{{X: 3, Y: 4}, {X: 9, Y: 8}}, Executed: 1},
	}}
	s := FromResult(res, 650, 600, nil)
	test.That(t, s.Robot, test.ShouldResemble, r2.Point{X: 1, Y: 2})
	test.That(t, s.Goal, test.ShouldResemble, r2.Point{X: 9, Y: 8})
	test.That(t, s.Planned, test.ShouldHaveLength, 2)
	test.That(t, s.Executed, test.ShouldResemble, []r2.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 3, Y: 4}})
}
