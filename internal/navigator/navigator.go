// Package navigator drives the robot to its goal: sense, plan, move, and replan on collision.
package navigator

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"robot-navigator/internal/logging"
	"robot-navigator/internal/naverr"
	"robot-navigator/internal/planner"
)

// Config controls the move/feedback loop.
type Config struct {
	Mode Mode
	// Settle is the wait after each move before feedback is read.
	Settle time.Duration
	// CheckEvery polls feedback on every Nth waypoint of a pass. Waypoint 0 is always checked.
	CheckEvery int
	// MaxReplans bounds collision replans per run. Zero means no bound.
	MaxReplans int
	// AllowPartialFallback executes the partial path of a capped direct walk instead of
	// failing.
	AllowPartialFallback bool
}

// DefaultConfig returns the loop settings each mode was tuned with.
func DefaultConfig(mode Mode) Config {
	cfg := Config{Mode: mode, Settle: 50 * time.Millisecond, CheckEvery: 1, MaxReplans: 20}
	if mode == ModeVision {
		cfg.Settle = 80 * time.Millisecond
		cfg.CheckEvery = 5
	}
	return cfg
}

// Option customizes a Navigator.
type Option func(*Navigator)

// WithClock replaces the wall clock used for settle waits and timestamps.
func WithClock(clk clock.Clock) Option {
	return func(n *Navigator) {
		n.clock = clk
	}
}

// Navigator runs one sequential navigation at a time.
type Navigator struct {
	cfg      Config
	sensor   Sensor
	strategy Strategy
	cmd      Commander
	feedback Feedback
	clock    clock.Clock
	logger   logging.Logger
}

// New returns a navigator.
func New(
	cfg Config,
	sensor Sensor,
	strategy Strategy,
	cmd Commander,
	feedback Feedback,
	logger logging.Logger,
	opts ...Option,
) *Navigator {
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	n := &Navigator{
		cfg:      cfg,
		sensor:   sensor,
		strategy: strategy,
		cmd:      cmd,
		feedback: feedback,
		clock:    clock.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// run is the mutable state of one Run call.
type run struct {
	res    *Result
	logger logging.Logger
	path   []r2.Point
}

// Run navigates until the goal is reached or the run fails. The returned Result is never
// nil; its State is GOAL_REACHED exactly when err is nil.
func (n *Navigator) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:   uuid.NewString(),
		Mode:    n.cfg.Mode,
		Started: n.clock.Now(),
	}
	r := &run{res: res, logger: logging.With(n.logger, "run", res.RunID)}
	r.logger.Infow("navigation started", "mode", n.cfg.Mode)

	// The first poll only records the collision baseline.
	if _, err := n.feedback.PollCollision(ctx); err != nil {
		return n.finish(r, StateFailed, err)
	}

	state := StatePlanning
	for {
		res.States = append(res.States, state)
		r.logger.Debugw("state", "state", state)

		var err error
		switch state {
		case StatePlanning:
			state, err = n.plan(ctx, r, "initial")
		case StateReplanning:
			if n.cfg.MaxReplans > 0 && res.Replans >= n.cfg.MaxReplans {
				err = naverr.New(naverr.PlanningFailure, "still colliding after %d replans", res.Replans)
				state = StateFailed
				break
			}
			res.Replans++
			state, err = n.plan(ctx, r, "collision")
		case StateExecuting:
			state, err = n.execute(ctx, r)
		}

		if state.Terminal() {
			return n.finish(r, state, err)
		}
	}
}

// plan senses and plans one cycle. Any previous path is discarded.
func (n *Navigator) plan(ctx context.Context, r *run, reason string) (State, error) {
	scene, err := n.sensor.Sense(ctx)
	if err != nil {
		return StateFailed, err
	}

	p, err := n.strategy.Plan(scene)
	cycle := Cycle{
		Index:     len(r.res.Cycles),
		Reason:    reason,
		Robot:     scene.Robot,
		Goal:      scene.Goal,
		Obstacles: len(scene.Obstacles),
		Seen:      scene.Obstacles,
		RawLength: p.RawLength,
		Margin:    p.Margin,
		Fallback:  p.Fallback,
		Waypoints: p.Waypoints,
		Length:    planner.PathLength(p.Waypoints),
	}
	if err != nil {
		partial := p.Fallback && len(p.Waypoints) > 1 && naverr.Is(err, naverr.PlanningFailure)
		if !partial || !n.cfg.AllowPartialFallback {
			cycle.Error = err.Error()
			r.res.Cycles = append(r.res.Cycles, cycle)
			return StateFailed, err
		}
		r.logger.Warnf("following partial direct path of %d points: %v", len(p.Waypoints), err)
		cycle.Partial = true
	}
	if len(p.Waypoints) == 0 {
		return StateFailed, naverr.New(naverr.PlanningFailure, "planner returned an empty path")
	}

	r.res.Cycles = append(r.res.Cycles, cycle)
	r.path = p.Waypoints
	r.logger.Infow("path planned",
		"reason", reason, "waypoints", len(p.Waypoints), "length", cycle.Length,
		"margin", p.Margin, "fallback", p.Fallback)
	return StateExecuting, nil
}

// execute follows r.path from its first waypoint.
func (n *Navigator) execute(ctx context.Context, r *run) (State, error) {
	tracker, _ := n.sensor.(positionTracker)
	cycle := &r.res.Cycles[len(r.res.Cycles)-1]

	for i, wp := range r.path {
		r.logger.Debugf("step %d/%d: moving to (%.0f, %.0f)", i+1, len(r.path), wp.X, wp.Y)
		if err := n.cmd.Move(ctx, wp); err != nil {
			return StateFailed, errors.Wrapf(err, "moving to step %d", i+1)
		}
		cycle.Executed++
		r.res.Steps++
		if tracker != nil {
			tracker.Commanded(wp)
		}

		if err := n.settle(ctx); err != nil {
			return StateFailed, err
		}
		if i%n.cfg.CheckEvery != 0 {
			continue
		}

		collided, err := n.feedback.PollCollision(ctx)
		if err != nil {
			return StateFailed, err
		}
		if collided {
			r.res.Collisions++
			r.logger.Infof("collision detected at step %d, recalculating path", i+1)
			return StateReplanning, nil
		}

		reached, err := n.feedback.PollGoalReached(ctx)
		if err != nil {
			return StateFailed, err
		}
		if reached {
			return StateGoalReached, nil
		}
	}

	reached, err := n.feedback.PollGoalReached(ctx)
	if err != nil {
		return StateFailed, err
	}
	if !reached {
		return StateFailed, naverr.New(naverr.GoalNotReached, "path exhausted after %d steps", len(r.path))
	}
	return StateGoalReached, nil
}

func (n *Navigator) settle(ctx context.Context) error {
	if n.cfg.Settle <= 0 {
		return ctx.Err()
	}
	t := n.clock.Timer(n.cfg.Settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for robot to settle")
	case <-t.C:
		return nil
	}
}

func (n *Navigator) finish(r *run, state State, err error) (*Result, error) {
	res := r.res
	if len(res.States) == 0 || res.States[len(res.States)-1] != state {
		res.States = append(res.States, state)
	}
	res.State = state
	res.Finished = n.clock.Now()
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = naverr.KindOf(err).String()
		r.logger.Errorf("navigation failed in %s: %v", res.Elapsed(), err)
		return res, err
	}
	r.logger.Infow("goal reached", "steps", res.Steps, "replans", res.Replans, "elapsed", res.Elapsed())
	return res, nil
}
