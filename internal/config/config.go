// Package config loads the navigator settings from a JSON file over built-in defaults.
package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"robot-navigator/internal/hub"
	"robot-navigator/internal/logging"
	"robot-navigator/internal/planner"
	"robot-navigator/internal/vision"
)

// Duration is a time.Duration written as a string such as "50ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON writes the duration in time.Duration.String form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts "80ms" style strings, or a bare number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		var ns int64
		if err := json.Unmarshal(b, &ns); err != nil {
			return errors.Errorf("duration must be a string like \"50ms\", got %s", string(b))
		}
		*d = Duration(ns)
		return nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// HubConfig locates the command hub.
type HubConfig struct {
	URL            string   `json:"url"`
	RequestTimeout Duration `json:"request_timeout"`
	CaptureTimeout Duration `json:"capture_timeout"`
}

// GridConfig is the static scene for grid mode.
type GridConfig struct {
	planner.GridConfig
	Start     hub.Point          `json:"start"`
	Goal      hub.Point          `json:"goal"`
	Obstacles []hub.ObstacleSpec `json:"obstacles"`
	// ObstacleFile, when set, replaces Obstacles with the contents of the file.
	ObstacleFile string `json:"obstacle_file,omitempty"`
}

// VisionConfig holds the pixel-space planner and segmentation settings.
type VisionConfig struct {
	Planner  planner.ContinuousConfig `json:"planner"`
	Detector vision.Config            `json:"detector"`
}

// ExecutionConfig drives the move/feedback loop.
type ExecutionConfig struct {
	GridSettle           Duration `json:"grid_settle"`
	VisionSettle         Duration `json:"vision_settle"`
	GridCheckEvery       int      `json:"grid_check_every"`
	VisionCheckEvery     int      `json:"vision_check_every"`
	MaxReplans           int      `json:"max_replans"`
	AllowPartialFallback bool     `json:"allow_partial_fallback"`
	ReportPath           string   `json:"report_path,omitempty"`
	RenderPath           string   `json:"render_path,omitempty"`
}

// LogConfig controls console logging.
type LogConfig struct {
	Level string `json:"level"`
}

// AppConfig aggregates all configuration sections.
type AppConfig struct {
	Hub       HubConfig       `json:"hub"`
	Grid      GridConfig      `json:"grid"`
	Vision    VisionConfig    `json:"vision"`
	Execution ExecutionConfig `json:"execution"`
	Log       LogConfig       `json:"log"`
}

// DefaultObstacles is the static scene the simulator starts with.
func DefaultObstacles() []hub.ObstacleSpec {
	centers := []hub.Point{
		{X: 150, Y: 120}, {X: 450, Y: 180}, {X: 220, Y: 300}, {X: 380, Y: 380},
		{X: 100, Y: 450}, {X: 500, Y: 100}, {X: 280, Y: 220}, {X: 420, Y: 320},
	}
	obstacles := make([]hub.ObstacleSpec, len(centers))
	for i, c := range centers {
		obstacles[i] = hub.ObstacleSpec{X: c.X, Y: c.Y, Size: 25}
	}
	return obstacles
}

// Default returns the settings for the stock 650x600 simulator.
func Default() AppConfig {
	return AppConfig{
		Hub: HubConfig{
			URL:            "http://localhost:5001",
			RequestTimeout: Duration(2 * time.Second),
			CaptureTimeout: Duration(5 * time.Second),
		},
		Grid: GridConfig{
			GridConfig: planner.GridConfig{
				CellSize:     10,
				Width:        65,
				Height:       60,
				RobotSize:    18,
				Connectivity: planner.Eight,
			},
			Start:     hub.Point{X: 320, Y: 300},
			Goal:      hub.Point{X: 550, Y: 80},
			Obstacles: DefaultObstacles(),
		},
		Vision: VisionConfig{
			Planner:  planner.DefaultContinuousConfig(),
			Detector: vision.DefaultConfig(),
		},
		Execution: ExecutionConfig{
			GridSettle:       Duration(50 * time.Millisecond),
			VisionSettle:     Duration(80 * time.Millisecond),
			GridCheckEvery:   1,
			VisionCheckEvery: 5,
			MaxReplans:       20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads the JSON config at path over the defaults. An empty path yields the
// defaults.
func LoadConfig(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if cfg.Grid.ObstacleFile != "" {
		obstacles, err := LoadObstacles(cfg.Grid.ObstacleFile)
		if err != nil {
			return cfg, err
		}
		cfg.Grid.Obstacles = obstacles
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (cfg AppConfig) Validate() error {
	var err error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			err = multierr.Append(err, errors.Errorf(format, args...))
		}
	}

	check(cfg.Hub.URL != "", "hub.url is required")
	check(cfg.Hub.RequestTimeout > 0, "hub.request_timeout must be positive")
	check(cfg.Hub.CaptureTimeout > 0, "hub.capture_timeout must be positive")

	g := cfg.Grid
	check(g.CellSize > 0, "grid.cell_size must be positive, got %v", g.CellSize)
	check(g.Width > 0 && g.Height > 0, "grid dimensions must be positive, got %dx%d", g.Width, g.Height)
	check(g.RobotSize >= 0, "grid.robot_size must not be negative")
	check(validConnectivity(g.Connectivity), "grid.connectivity must be 4 or 8, got %d", g.Connectivity)
	for i, o := range g.Obstacles {
		check(o.Size >= 0, "grid.obstacles[%d].size must not be negative", i)
	}

	v := cfg.Vision.Planner
	check(v.CanvasWidth > 0 && v.CanvasHeight > 0, "vision.planner canvas must be positive")
	check(v.Stride > 0, "vision.planner.stride must be positive")
	check(v.MarginAttempts > 0, "vision.planner.margin_attempts must be positive")
	check(v.DirectMaxPoints > 1, "vision.planner.direct_max_points must be above 1")
	check(validConnectivity(v.Connectivity), "vision.planner.connectivity must be 4 or 8, got %d", v.Connectivity)
	check(len(cfg.Vision.Detector.Robot) > 0, "vision.detector.robot needs at least one range")
	check(len(cfg.Vision.Detector.Goal) > 0, "vision.detector.goal needs at least one range")

	e := cfg.Execution
	check(e.GridSettle >= 0 && e.VisionSettle >= 0, "execution settle intervals must not be negative")
	check(e.GridCheckEvery > 0, "execution.grid_check_every must be positive")
	check(e.VisionCheckEvery > 0, "execution.vision_check_every must be positive")
	check(e.MaxReplans >= 0, "execution.max_replans must not be negative")

	if _, lerr := logging.ParseLevel(cfg.Log.Level); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}

func validConnectivity(c planner.Connectivity) bool {
	return c == planner.Four || c == planner.Eight
}
