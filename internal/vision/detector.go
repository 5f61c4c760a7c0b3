// Package vision locates the robot, the goal and the obstacles in a captured canvas frame.
package vision

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/samber/lo"

	"robot-navigator/internal/naverr"
)

// Config holds the segmentation thresholds.
type Config struct {
	Robot           []HSVRange `json:"robot"`
	Goal            []HSVRange `json:"goal"`
	Obstacle        []HSVRange `json:"obstacle"`
	CloseRadius     int        `json:"close_radius"`
	// MinObstacleArea bounds the contour area, not the pixel count, of an obstacle region.
	MinObstacleArea int `json:"min_obstacle_area"`
}

// DefaultConfig segments a red robot, a green goal and near-black obstacles.
func DefaultConfig() Config {
	return Config{
		Robot: []HSVRange{
			{Lower: HSV{0, 100, 100}, Upper: HSV{10, 255, 255}},
			{Lower: HSV{170, 100, 100}, Upper: HSV{180, 255, 255}},
		},
		Goal: []HSVRange{
			{Lower: HSV{40, 100, 100}, Upper: HSV{80, 255, 255}},
		},
		Obstacle: []HSVRange{
			{Lower: HSV{0, 0, 0}, Upper: HSV{180, 255, 50}},
		},
		CloseRadius:     1,
		MinObstacleArea: 100,
	}
}

// Detection is what one frame shows.
type Detection struct {
	Robot     r2.Point
	Goal      r2.Point
	Obstacles []r2.Point
}

// Detector segments frames by color.
type Detector struct {
	cfg Config
}

// NewDetector returns a detector for cfg.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect locates robot, goal and obstacles in img. A missing or degenerate robot or goal
// region is a SensingFailure.
func (d *Detector) Detect(img image.Image) (Detection, error) {
	if img == nil || img.Bounds().Empty() {
		return Detection{}, naverr.New(naverr.SensingFailure, "empty frame")
	}

	masks := Threshold(Flatten(img), d.cfg.Robot, d.cfg.Goal, d.cfg.Obstacle)
	for i := range masks {
		masks[i] = Close(masks[i], d.cfg.CloseRadius)
	}

	robot, err := largestCentroid(masks[0], "robot")
	if err != nil {
		return Detection{}, err
	}
	goal, err := largestCentroid(masks[1], "goal")
	if err != nil {
		return Detection{}, err
	}

	obstacles := lo.Filter(Regions(masks[2]), func(r Region, _ int) bool {
		return r.ContourArea() > float64(d.cfg.MinObstacleArea)
	})
	return Detection{
		Robot: robot,
		Goal:  goal,
		Obstacles: lo.Map(obstacles, func(r Region, _ int) r2.Point {
			return r.Centroid
		}),
	}, nil
}

// Flatten composites img over the white canvas background. Transparent pixels would
// otherwise read as black and be taken for obstacles. The result starts at (0, 0).
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Point{}, 1)
}

func largestCentroid(m *Mask, what string) (r2.Point, error) {
	regions := Regions(m)
	if len(regions) == 0 {
		return r2.Point{}, naverr.New(naverr.SensingFailure, "no %s region detected", what)
	}
	largest := lo.MaxBy(regions, func(a, b Region) bool { return a.Area > b.Area })
	if largest.Degenerate() {
		return r2.Point{}, naverr.New(naverr.SensingFailure, "%s region at %v has no area", what, largest.Bounds)
	}
	return largest.Centroid, nil
}
