package navigator

import (
	"context"
	"image"

	"github.com/golang/geo/r2"

	"robot-navigator/internal/planner"
)

// Commander sends motion commands to the robot.
type Commander interface {
	Move(ctx context.Context, p r2.Point) error
}

// Feedback is the read-only view of what the simulator reports back.
type Feedback interface {
	// PollCollision reports whether a collision happened since the previous poll.
	PollCollision(ctx context.Context) (bool, error)
	PollGoalReached(ctx context.Context) (bool, error)
}

// FrameSource captures the simulator canvas.
type FrameSource interface {
	CaptureFrame(ctx context.Context) (image.Image, error)
}

// Positioner reports where the robot currently is, in pixels.
type Positioner interface {
	CurrentPosition(ctx context.Context) (r2.Point, error)
}

// ObstacleSource lists the known obstacles.
type ObstacleSource interface {
	Obstacles(ctx context.Context) ([]planner.Obstacle, error)
}

// Sensor produces the scene one planning cycle works from.
type Sensor interface {
	Sense(ctx context.Context) (Scene, error)
}

// Scene is a snapshot of the world in pixel coordinates.
type Scene struct {
	Robot     r2.Point
	Goal      r2.Point
	Obstacles []planner.Obstacle
}
