package navigator

import (
	"context"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"

	"robot-navigator/internal/logging"
	"robot-navigator/internal/naverr"
	"robot-navigator/internal/planner"
	"robot-navigator/internal/vision"
)

// positionTracker is implemented by sensors that want to know where the robot was sent.
type positionTracker interface {
	Commanded(p r2.Point)
}

// StaticSensor senses a fixed goal and a known obstacle list. The robot position comes
// from the Positioner when it reports one, otherwise from the last commanded waypoint, and
// before any command from Start. Obstacles come from the ObstacleSource when it lists any,
// otherwise from Fallback.
type StaticSensor struct {
	Positioner Positioner
	Source     ObstacleSource
	Start      r2.Point
	Goal       r2.Point
	Fallback   []planner.Obstacle

	logger logging.Logger

	mu        sync.Mutex
	commanded *r2.Point
}

// NewStaticSensor returns a sensor for a known scene. positioner and source may be nil.
func NewStaticSensor(
	positioner Positioner,
	source ObstacleSource,
	start, goal r2.Point,
	fallback []planner.Obstacle,
	logger logging.Logger,
) *StaticSensor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StaticSensor{
		Positioner: positioner,
		Source:     source,
		Start:      start,
		Goal:       goal,
		Fallback:   fallback,
		logger:     logger,
	}
}

// Commanded records the last waypoint the robot was sent to.
func (s *StaticSensor) Commanded(p r2.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commanded = &p
}

// Sense never fails: every source has a configured fallback.
func (s *StaticSensor) Sense(ctx context.Context) (Scene, error) {
	scene := Scene{Robot: s.position(ctx), Goal: s.Goal, Obstacles: s.Fallback}

	if s.Source != nil {
		obstacles, err := s.Source.Obstacles(ctx)
		switch {
		case err != nil:
			s.logger.Warnf("obstacle source unavailable, using %d configured obstacles: %v", len(s.Fallback), err)
		case len(obstacles) > 0:
			scene.Obstacles = obstacles
		}
	}
	return scene, nil
}

func (s *StaticSensor) position(ctx context.Context) r2.Point {
	if s.Positioner != nil {
		p, err := s.Positioner.CurrentPosition(ctx)
		if err == nil {
			return p
		}
		s.logger.Debugf("robot position unavailable: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commanded != nil {
		return *s.commanded
	}
	return s.Start
}

// VisionSensor senses the scene from a captured frame. Detected obstacles are points and
// rely on the planner's safety margin for their extent.
type VisionSensor struct {
	Frames   FrameSource
	Detector *vision.Detector
	logger   logging.Logger
}

// NewVisionSensor returns a sensor that segments frames from source with detector.
func NewVisionSensor(source FrameSource, detector *vision.Detector, logger logging.Logger) *VisionSensor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VisionSensor{Frames: source, Detector: detector, logger: logger}
}

// Sense captures one frame and detects robot, goal and obstacles in it.
func (s *VisionSensor) Sense(ctx context.Context) (Scene, error) {
	img, err := s.Frames.CaptureFrame(ctx)
	if err != nil {
		if naverr.KindOf(err) == naverr.Unknown {
			return Scene{}, naverr.Wrap(naverr.SensingFailure, err, "capturing frame")
		}
		return Scene{}, err
	}

	det, err := s.Detector.Detect(img)
	if err != nil {
		return Scene{}, err
	}
	s.logger.Infow("frame analysed",
		"robot", det.Robot, "goal", det.Goal, "obstacles", len(det.Obstacles))

	return Scene{
		Robot: det.Robot,
		Goal:  det.Goal,
		Obstacles: lo.Map(det.Obstacles, func(p r2.Point, _ int) planner.Obstacle {
			return planner.Obstacle{Center: p}
		}),
	}, nil
}
