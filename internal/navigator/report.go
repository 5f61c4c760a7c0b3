package navigator

import (
	"encoding/json"
	"os"
	"time"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"robot-navigator/internal/planner"
)

// Cycle records one planning pass and how far the robot got along it.
type Cycle struct {
	Index     int                `json:"index"`
	Reason    string             `json:"reason"`
	Robot     r2.Point           `json:"robot"`
	Goal      r2.Point           `json:"goal"`
	Obstacles int                `json:"obstacles"`
	Seen      []planner.Obstacle `json:"seen_obstacles,omitempty"`
	RawLength int                `json:"raw_length"`
	Margin    float64            `json:"margin,omitempty"`
	Fallback  bool               `json:"fallback,omitempty"`
	Partial   bool               `json:"partial,omitempty"`
	Waypoints []r2.Point         `json:"waypoints"`
	Length    float64            `json:"length_px"`
	Executed  int                `json:"executed"`
	Error     string             `json:"error,omitempty"`
}

// Result summarizes one navigation run.
type Result struct {
	RunID      string    `json:"run_id"`
	Mode       Mode      `json:"mode"`
	State      State     `json:"state"`
	States     []State   `json:"states"`
	Cycles     []Cycle   `json:"cycles"`
	Steps      int       `json:"steps"`
	Replans    int       `json:"replans"`
	Collisions int       `json:"collisions"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
}

// Elapsed is the wall time the run took.
func (r *Result) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Executed returns the waypoints actually commanded, across all cycles, in order.
func (r *Result) Executed() []r2.Point {
	return lo.FlatMap(r.Cycles, func(c Cycle, _ int) []r2.Point {
		return c.Waypoints[:min(c.Executed, len(c.Waypoints))]
	})
}

// Bound is the box covering every planned waypoint of the run.
func (r *Result) Bound() orb.Bound {
	all := lo.FlatMap(r.Cycles, func(c Cycle, _ int) []r2.Point { return c.Waypoints })
	if len(all) == 0 {
		return orb.Bound{}
	}
	return planner.PathBound(all)
}

// SaveReport writes the result as indented JSON.
func SaveReport(res *Result, filename string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}

// LoadReport reads a report written by SaveReport.
func LoadReport(filename string) (*Result, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read report")
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal report")
	}
	return &res, nil
}
