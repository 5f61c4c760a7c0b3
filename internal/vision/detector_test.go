package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/fogleman/gg"
	"go.viam.com/test"

	"robot-navigator/internal/naverr"
)

type blob struct {
	x, y, r float64
	c       color.Color
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 200, 0, 255}
	black = color.RGBA{20, 20, 20, 255}
)

func canvas(blobs ...blob) image.Image {
	dc := gg.NewContext(650, 600)
	dc.SetColor(color.White)
	dc.Clear()
	for _, b := range blobs {
		dc.SetColor(b.c)
		dc.DrawCircle(b.x, b.y, b.r)
		dc.Fill()
	}
	return dc.Image()
}

func TestDetectRobotAndGoal(t *testing.T) {
	img := canvas(blob{100, 100, 18, red}, blob{500, 500, 15, green})

	det, err := NewDetector(DefaultConfig()).Detect(img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, det.Robot.X, test.ShouldAlmostEqual, 100, 1)
	test.That(t, det.Robot.Y, test.ShouldAlmostEqual, 100, 1)
	test.That(t, det.Goal.X, test.ShouldAlmostEqual, 500, 1)
	test.That(t, det.Goal.Y, test.ShouldAlmostEqual, 500, 1)
	test.That(t, det.Obstacles, test.ShouldBeEmpty)
}

func TestDetectObstaclesAboveMinimumArea(t *testing.T) {
	img := canvas(
		blob{100, 100, 18, red},
		blob{500, 500, 15, green},
		blob{300, 200, 12.5, black},
		blob{200, 400, 12.5, black},
		blob{600, 50, 3, black}, // ~28 px, filtered out
	)

	det, err := NewDetector(DefaultConfig()).Detect(img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, det.Obstacles, test.ShouldHaveLength, 2)
	// regions are labeled in raster order
	test.That(t, det.Obstacles[0].X, test.ShouldAlmostEqual, 300, 1)
	test.That(t, det.Obstacles[0].Y, test.ShouldAlmostEqual, 200, 1)
	test.That(t, det.Obstacles[1].X, test.ShouldAlmostEqual, 200, 1)
	test.That(t, det.Obstacles[1].Y, test.ShouldAlmostEqual, 400, 1)
}

func TestDetectPicksLargestRegion(t *testing.T) {
	img := canvas(
		blob{50, 50, 5, red},
		blob{320, 300, 18, red},
		blob{500, 500, 15, green},
	)
	det, err := NewDetector(DefaultConfig()).Detect(img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, det.Robot.X, test.ShouldAlmostEqual, 320, 1)
	test.That(t, det.Robot.Y, test.ShouldAlmostEqual, 300, 1)
}

func TestDetectFailures(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	_, err := detector.Detect(canvas(blob{500, 500, 15, green}))
	test.That(t, naverr.KindOf(err), test.ShouldEqual, naverr.SensingFailure)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no robot region")

	_, err = detector.Detect(canvas(blob{100, 100, 18, red}))
	test.That(t, naverr.KindOf(err), test.ShouldEqual, naverr.SensingFailure)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no goal region")

	// a one pixel wide red line has no contour area
	dc := gg.NewContext(100, 100)
	dc.SetColor(color.White)
	dc.Clear()
	img := dc.Image().(*image.RGBA)
	for x := 10; x < 60; x++ {
		img.Set(x, 20, red)
	}
	for y := 60; y < 70; y++ {
		for x := 60; x < 70; x++ {
			img.Set(x, y, green)
		}
	}
	_, err = detector.Detect(img)
	test.That(t, naverr.KindOf(err), test.ShouldEqual, naverr.SensingFailure)
	test.That(t, err.Error(), test.ShouldContainSubstring, "has no area")

	_, err = detector.Detect(nil)
	test.That(t, naverr.KindOf(err), test.ShouldEqual, naverr.SensingFailure)
}

func TestCloseFillsPinholes(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 10, 10))
	for y := 2; y < 8; y++ {
		for x := 2; x < 8; x++ {
			m.Set(x, y, true)
		}
	}
	m.Set(4, 4, false)
	test.That(t, m.Count(), test.ShouldEqual, 35)

	closed := Close(m, 1)
	test.That(t, closed.At(4, 4), test.ShouldBeTrue)
	test.That(t, closed.Count(), test.ShouldEqual, 36)
	test.That(t, closed.At(-1, 0), test.ShouldBeFalse)
}

func TestRegionsEightConnected(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 5, 5))
	m.Set(0, 0, true)
	m.Set(1, 1, true)
	m.Set(4, 4, true)
	regions := Regions(m)
	test.That(t, regions, test.ShouldHaveLength, 2)
	test.That(t, regions[0].Area, test.ShouldEqual, 2)
	test.That(t, regions[0].Centroid.X, test.ShouldAlmostEqual, 0.5)
	test.That(t, regions[1].Degenerate(), test.ShouldBeTrue)
}

func TestHSVConversion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{0, 255, 0, 255})
	c := toHSV(img, 0, 0)
	test.That(t, c.H, test.ShouldAlmostEqual, 60)
	test.That(t, c.S, test.ShouldAlmostEqual, 255)
	test.That(t, c.V, test.ShouldAlmostEqual, 255)
	test.That(t, DefaultConfig().Goal[0].Contains(c), test.ShouldBeTrue)
}

func TestDetectTransparentBackground(t *testing.T) {
	dc := gg.NewContext(650, 600)
	dc.SetColor(red)
	dc.DrawCircle(100, 100, 18)
	dc.Fill()
	dc.SetColor(green)
	dc.DrawCircle(500, 500, 15)
	dc.Fill()

	det, err := NewDetector(DefaultConfig()).Detect(dc.Image())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, det.Obstacles, test.ShouldBeEmpty)
	test.That(t, det.Robot.X, test.ShouldAlmostEqual, 100, 1)

	flat := Flatten(dc.Image())
	test.That(t, flat.NRGBAAt(0, 0), test.ShouldResemble, color.NRGBA{255, 255, 255, 255})
}

func squares() *gg.Context {
	dc := gg.NewContext(650, 600)
	dc.SetColor(color.White)
	dc.Clear()
	return dc
}

func fillSquare(dc *gg.Context, r image.Rectangle, c color.Color) {
	dc.SetColor(c)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Fill()
}

func TestCentroidIsMeanPixelIndex(t *testing.T) {
	dc := squares()
	fillSquare(dc, image.Rect(90, 90, 111, 111), red)
	fillSquare(dc, image.Rect(490, 490, 511, 511), green)

	det, err := NewDetector(DefaultConfig()).Detect(dc.Image())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, det.Robot.X, test.ShouldEqual, 100.0)
	test.That(t, det.Robot.Y, test.ShouldEqual, 100.0)
	test.That(t, det.Goal.X, test.ShouldEqual, 500.0)
	test.That(t, det.Goal.Y, test.ShouldEqual, 500.0)
	test.That(t, det.Obstacles, test.ShouldBeEmpty)
}

func TestContourArea(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 20, 20))
	for y := 2; y < 13; y++ {
		for x := 2; x < 13; x++ {
			m.Set(x, y, true)
		}
	}
	regions := Regions(m)
	test.That(t, regions, test.ShouldHaveLength, 1)
	test.That(t, regions[0].Area, test.ShouldEqual, 121)
	test.That(t, regions[0].Boundary, test.ShouldEqual, 40)
	test.That(t, regions[0].ContourArea(), test.ShouldEqual, 100.0)

	line := NewMask(image.Rect(0, 0, 20, 20))
	for x := 0; x < 15; x++ {
		line.Set(x, 5, true)
	}
	test.That(t, Regions(line)[0].ContourArea(), test.ShouldEqual, 0.0)
}

func TestMinimumObstacleAreaUsesContour(t *testing.T) {
	dc := squares()
	fillSquare(dc, image.Rect(90, 90, 111, 111), red)
	fillSquare(dc, image.Rect(490, 490, 511, 511), green)
	// 11x11 pixels enclose exactly 100, 12x12 enclose 121
	fillSquare(dc, image.Rect(200, 200, 211, 211), black)
	fillSquare(dc, image.Rect(300, 300, 312, 312), black)

	det, err := NewDetector(DefaultConfig()).Detect(dc.Image())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, det.Obstacles, test.ShouldHaveLength, 1)
	test.That(t, det.Obstacles[0].X, test.ShouldEqual, 305.5)
	test.That(t, det.Obstacles[0].Y, test.ShouldEqual, 305.5)
}
