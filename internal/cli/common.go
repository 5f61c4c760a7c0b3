package cli

import (
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"robot-navigator/internal/config"
	"robot-navigator/internal/hub"
	"robot-navigator/internal/logging"
	"robot-navigator/internal/planner"
)

// settings is the loaded config plus what every command builds from it.
type settings struct {
	cfg    config.AppConfig
	logger logging.Logger
}

// loadSettings reads the config file and applies the global flag overrides.
func loadSettings() (*settings, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if hubURL != "" {
		cfg.Hub.URL = hubURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	logger, err := logging.NewLogger("navigator", cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, logger: logger}, nil
}

// client returns a hub client for the configured URL.
func (s *settings) client() *hub.Client {
	return hub.NewClient(s.cfg.Hub.URL, hub.Options{
		RequestTimeout: s.cfg.Hub.RequestTimeout.Std(),
		CaptureTimeout: s.cfg.Hub.CaptureTimeout.Std(),
	}, s.logger)
}

// obstacles returns the configured static obstacles.
func (s *settings) obstacles() []planner.Obstacle {
	return lo.Map(s.cfg.Grid.Obstacles, func(o hub.ObstacleSpec, _ int) planner.Obstacle {
		return o.Obstacle()
	})
}

// parsePoint parses "x,y" in pixels.
func parsePoint(value string) (r2.Point, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return r2.Point{}, errors.Errorf("expected x,y but got %q", value)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return r2.Point{}, errors.Wrapf(err, "bad x in %q", value)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return r2.Point{}, errors.Wrapf(err, "bad y in %q", value)
	}
	return r2.Point{X: x, Y: y}, nil
}

func formatPoint(p r2.Point) string {
	return strconv.FormatFloat(p.X, 'f', 1, 64) + ", " + strconv.FormatFloat(p.Y, 'f', 1, 64)
}
