package hub

import (
	"github.com/golang/geo/r2"

	"robot-navigator/internal/planner"
)

// Point is a pixel coordinate on the wire.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ObstacleSpec is an obstacle as the hub and the simulator describe it.
type ObstacleSpec struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Obstacle converts the wire form into a planner obstacle. Size is a diameter.
func (o ObstacleSpec) Obstacle() planner.Obstacle {
	return planner.Obstacle{Center: r2.Point{X: o.X, Y: o.Y}, Radius: o.Size / 2}
}

// MoveRequest is the body of POST /move.
type MoveRequest = Point

// GoalRequest is the body of POST /goal. Either Corner or both X and Y are set.
type GoalRequest struct {
	Corner string   `json:"corner,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

// ObstaclesResponse is the body of GET /obstacles.
type ObstaclesResponse struct {
	Obstacles []ObstacleSpec `json:"obstacles"`
	Count     int            `json:"count"`
	Message   string         `json:"message,omitempty"`
}

// CollisionsResponse is the body of GET /collisions.
type CollisionsResponse struct {
	Count int `json:"count"`
}

// GoalStatusResponse is the body of GET /goal/status.
type GoalStatusResponse struct {
	GoalReached bool   `json:"goal_reached"`
	Status      string `json:"status"`
}

// Status is the body of GET /status.
type Status struct {
	ConnectedSimulators int     `json:"connected_simulators"`
	CollisionCount      int     `json:"collision_count"`
	GoalReached         bool    `json:"goal_reached"`
	CanvasWidth         float64 `json:"canvas_width"`
	CanvasHeight        float64 `json:"canvas_height"`
	RobotPosition       *Point  `json:"robot_position,omitempty"`
}

// CaptureResponse is the body of GET /capture.
type CaptureResponse struct {
	Status    string `json:"status"`
	ImageData string `json:"image_data"`
	Message   string `json:"message,omitempty"`
}

// errorResponse is what the hub returns alongside a non-200 status.
type errorResponse struct {
	Error string `json:"error"`
}
