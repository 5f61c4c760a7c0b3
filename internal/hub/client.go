// Package hub is a synchronous client for the simulator command and telemetry hub.
package hub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // frames may arrive as jpeg
	_ "image/png"  // frames normally arrive as png
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"robot-navigator/internal/logging"
	"robot-navigator/internal/naverr"
	"robot-navigator/internal/planner"
)

// Options configures a Client.
type Options struct {
	RequestTimeout time.Duration
	CaptureTimeout time.Duration
	HTTPClient     *http.Client
}

// Client talks to one hub. Every call is a single bounded request.
type Client struct {
	baseURL string
	opts    Options
	http    *http.Client
	logger  logging.Logger

	mu             sync.Mutex
	seenCollisions int
	haveBaseline   bool
}

// NewClient returns a client for the hub at baseURL, e.g. http://localhost:5001.
func NewClient(baseURL string, opts Options, logger logging.Logger) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Second
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = 5 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		http:    httpClient,
		logger:  logger,
	}
}

// do sends one request and decodes a JSON reply into out. Failures are tagged with kind,
// or Timeout when the deadline expired.
func (c *Client) do(
	ctx context.Context,
	kind naverr.Kind,
	timeout time.Duration,
	method, path string,
	body, out interface{},
) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s", method, path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return naverr.Wrap(naverr.Timeout, err, "%s %s exceeded %s", method, path, timeout)
		}
		return naverr.Wrap(kind, err, "%s %s", method, path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return naverr.Wrap(naverr.Timeout, err, "reading %s %s exceeded %s", method, path, timeout)
		}
		return naverr.Wrap(kind, err, "reading %s %s", method, path)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return naverr.New(kind, "%s %s: %d %s", method, path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return naverr.Wrap(kind, err, "decoding %s %s", method, path)
	}
	return nil
}

// Move commands the robot toward p and waits for the hub to acknowledge.
func (c *Client) Move(ctx context.Context, p r2.Point) error {
	c.logger.Debugw("move", "x", p.X, "y", p.Y)
	return c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout,
		http.MethodPost, "/move", MoveRequest{X: p.X, Y: p.Y}, nil)
}

// CollisionCount returns the hub's cumulative collision counter.
func (c *Client) CollisionCount(ctx context.Context) (int, error) {
	var resp CollisionsResponse
	if err := c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout,
		http.MethodGet, "/collisions", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// PollCollision reports whether the collision counter rose since the previous poll. The
// first poll only records the baseline.
func (c *Client) PollCollision(ctx context.Context) (bool, error) {
	count, err := c.CollisionCount(ctx)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveBaseline {
		c.seenCollisions = count
		c.haveBaseline = true
		return false, nil
	}
	collided := count > c.seenCollisions
	c.seenCollisions = count
	return collided, nil
}

// PollGoalReached reports whether the simulator signalled that the robot reached the goal.
func (c *Client) PollGoalReached(ctx context.Context) (bool, error) {
	var resp GoalStatusResponse
	if err := c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout,
		http.MethodGet, "/goal/status", nil, &resp); err != nil {
		return false, err
	}
	return resp.GoalReached, nil
}

// Status returns the hub status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var resp Status
	err := c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout, http.MethodGet, "/status", nil, &resp)
	return resp, err
}

// CurrentPosition returns the robot position when the hub tracks it.
func (c *Client) CurrentPosition(ctx context.Context) (r2.Point, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return r2.Point{}, naverr.Wrap(naverr.SensingFailure, err, "querying robot position")
	}
	if status.RobotPosition == nil {
		return r2.Point{}, naverr.New(naverr.SensingFailure, "hub does not report a robot position")
	}
	return r2.Point{X: status.RobotPosition.X, Y: status.RobotPosition.Y}, nil
}

// Obstacles returns the obstacle list the hub tracks, which may be empty.
func (c *Client) Obstacles(ctx context.Context) ([]planner.Obstacle, error) {
	var resp ObstaclesResponse
	if err := c.do(ctx, naverr.SensingFailure, c.opts.RequestTimeout,
		http.MethodGet, "/obstacles", nil, &resp); err != nil {
		return nil, err
	}
	obstacles := make([]planner.Obstacle, len(resp.Obstacles))
	for i, o := range resp.Obstacles {
		obstacles[i] = o.Obstacle()
	}
	return obstacles, nil
}

// CaptureFrame asks the simulator for a snapshot of its canvas.
func (c *Client) CaptureFrame(ctx context.Context) (image.Image, error) {
	var resp CaptureResponse
	if err := c.do(ctx, naverr.SensingFailure, c.opts.CaptureTimeout,
		http.MethodGet, "/capture", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, naverr.New(naverr.SensingFailure, "capture failed: %s", resp.Message)
	}
	return DecodeDataURL(resp.ImageData)
}

// DecodeDataURL decodes a base64 image, with or without a data: URL prefix.
func DecodeDataURL(data string) (image.Image, error) {
	if strings.HasPrefix(data, "data:") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 {
			return nil, naverr.New(naverr.SensingFailure, "malformed data url")
		}
		data = data[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, naverr.Wrap(naverr.SensingFailure, err, "decoding frame base64")
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, naverr.Wrap(naverr.SensingFailure, err, "decoding frame image")
	}
	return img, nil
}

// Reset clears collisions, the goal flag and obstacles on the hub and simulators.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout, http.MethodPost, "/reset", struct{}{}, nil)
}

// Stop halts the robot.
func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout, http.MethodPost, "/stop", struct{}{}, nil)
}

// SetGoal places the goal on the simulator canvas.
func (c *Client) SetGoal(ctx context.Context, goal GoalRequest) error {
	if goal.Corner == "" && (goal.X == nil || goal.Y == nil) {
		return errors.New("goal needs a corner or both x and y")
	}
	return c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout, http.MethodPost, "/goal", goal, nil)
}

// SetObstacles replaces the simulator obstacles.
func (c *Client) SetObstacles(ctx context.Context, obstacles []ObstacleSpec) error {
	if len(obstacles) == 0 {
		return errors.New("obstacle list is empty")
	}
	body := map[string]interface{}{"obstacles": obstacles}
	return c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout, http.MethodPost, "/obstacles/positions", body, nil)
}

// RandomObstacles asks the hub to scatter count obstacles and returns where they went.
func (c *Client) RandomObstacles(ctx context.Context, count int) ([]ObstacleSpec, error) {
	var resp ObstaclesResponse
	body := map[string]int{"count": count}
	if err := c.do(ctx, naverr.CommandFailure, c.opts.RequestTimeout,
		http.MethodPost, "/obstacles/random", body, &resp); err != nil {
		return nil, err
	}
	return resp.Obstacles, nil
}

// String identifies the hub in logs.
func (c *Client) String() string {
	return fmt.Sprintf("hub(%s)", c.baseURL)
}
