package navigator

import (
	"context"
	"image"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"robot-navigator/internal/naverr"
	"robot-navigator/internal/planner"
)

// fakeSim stands in for the hub. Collisions are counted cumulatively and reported
// relative to the previous poll, the way the hub client does.
type fakeSim struct {
	mu sync.Mutex

	goal  r2.Point
	reach float64

	collideOn     map[int]bool // 1-based move numbers that collide
	collideAlways bool
	failMoveAt    int
	pollErr       error
	frame         image.Image
	frames        []image.Image // per capture, the last one repeats; overrides frame
	position      *r2.Point
	obstacles     []planner.Obstacle

	moves          []r2.Point
	collisions     int
	seen           int
	primed         bool
	collisionPolls int
	goalPolls      int
	captures       int
}

func (f *fakeSim) Move(_ context.Context, p r2.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.moves) + 1
	if n == f.failMoveAt {
		return naverr.New(naverr.CommandFailure, "POST /move: 400 No connected simulators.")
	}
	f.moves = append(f.moves, p)
	if f.collideAlways || f.collideOn[n] {
		f.collisions++
	}
	return nil
}

func (f *fakeSim) PollCollision(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return false, f.pollErr
	}
	f.collisionPolls++
	if !f.primed {
		f.primed = true
		f.seen = f.collisions
		return false, nil
	}
	collided := f.collisions > f.seen
	f.seen = f.collisions
	return collided, nil
}

func (f *fakeSim) PollGoalReached(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goalPolls++
	if len(f.moves) == 0 {
		return false, nil
	}
	last := f.moves[len(f.moves)-1]
	return last.Sub(f.goal).Norm() < f.reach, nil
}

func (f *fakeSim) CaptureFrame(context.Context) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures++
	frame := f.frame
	if len(f.frames) > 0 {
		frame = f.frames[min(f.captures, len(f.frames))-1]
	}
	if frame == nil {
		return nil, errors.New("capture timed out")
	}
	return frame, nil
}

func (f *fakeSim) CurrentPosition(context.Context) (r2.Point, error) {
	if f.position == nil {
		return r2.Point{}, naverr.New(naverr.SensingFailure, "hub does not report a robot position")
	}
	return *f.position, nil
}

func (f *fakeSim) Obstacles(context.Context) ([]planner.Obstacle, error) {
	return f.obstacles, nil
}

func (f *fakeSim) moveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

// scriptedStrategy returns the same plan every time.
type scriptedStrategy struct {
	plan  Plan
	err   error
	calls int
}

func (s *scriptedStrategy) Plan(Scene) (Plan, error) {
	s.calls++
	return s.plan, s.err
}

func straightLine(from r2.Point, n int, stride float64) []r2.Point {
	points := make([]r2.Point, n)
	for i := range points {
		points[i] = r2.Point{X: from.X + float64(i)*stride, Y: from.Y}
	}
	return points
}
