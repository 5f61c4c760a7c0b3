package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.viam.com/test"

	"robot-navigator/internal/hub"
	"robot-navigator/internal/navigator"
	"robot-navigator/internal/planner"
	"robot-navigator/internal/render"
	"robot-navigator/internal/vision"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

// fakeHub records requests and answers like the command hub.
type fakeHub struct {
	mu    sync.Mutex
	goal  hub.Point
	moves []hub.Point
	goals []hub.GoalRequest
}

func (f *fakeHub) recorded() ([]hub.Point, []hub.GoalRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]hub.Point(nil), f.moves...), append([]hub.GoalRequest(nil), f.goals...)
}

func (f *fakeHub) server(t *testing.T) *httptest.Server {
	t.Helper()
	reply := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/move", func(w http.ResponseWriter, r *http.Request) {
		var p hub.Point
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		f.moves = append(f.moves, p)
		f.mu.Unlock()
		reply(w, map[string]string{"status": "move command sent"})
	})
	mux.HandleFunc("/collisions", func(w http.ResponseWriter, r *http.Request) {
		reply(w, hub.CollisionsResponse{Count: 0})
	})
	mux.HandleFunc("/goal/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reached := len(f.moves) > 0 && f.moves[len(f.moves)-1] == f.goal
		reply(w, hub.GoalStatusResponse{GoalReached: reached})
	})
	mux.HandleFunc("/obstacles", func(w http.ResponseWriter, r *http.Request) {
		reply(w, hub.ObstaclesResponse{Message: "no obstacle data available"})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		reply(w, hub.Status{ConnectedSimulators: 1, CollisionCount: 2})
	})
	mux.HandleFunc("/goal", func(w http.ResponseWriter, r *http.Request) {
		var req hub.GoalRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.goals = append(f.goals, req)
		f.mu.Unlock()
		reply(w, map[string]string{"status": "goal set"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	test.That(t, os.WriteFile(path, []byte(body), 0o600), test.ShouldBeNil)
	return path
}

func TestRootCommandHelp(t *testing.T) {
	out, err := execute(t, "--help")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "navigator")
	test.That(t, out, test.ShouldContainSubstring, "Simulator Control:")
	test.That(t, out, test.ShouldContainSubstring, "navigate")
}

func TestSubcommandHelpListsUngroupedCommands(t *testing.T) {
	out, err := execute(t, "navigate", "--help")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Commands:")
	test.That(t, out, test.ShouldContainSubstring, "grid")
	test.That(t, out, test.ShouldContainSubstring, "vision")
	test.That(t, out, test.ShouldNotContainSubstring, "Simulator Control:")
}

func TestRootCommandInvalid(t *testing.T) {
	_, err := execute(t, "fly")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 550, 80 ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, r2.Point{X: 550, Y: 80})

	for _, bad := range []string{"550", "a,1", "1,b", "1,2,3"} {
		_, err := parsePoint(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestGoalRequest(t *testing.T) {
	req, err := goalRequest("ne", nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, req.Corner, test.ShouldEqual, "NE")

	req, err = goalRequest("", []string{"100,200"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *req.X, test.ShouldEqual, 100.0)
	test.That(t, *req.Y, test.ShouldEqual, 200.0)

	_, err = goalRequest("NE", []string{"1,2"})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = goalRequest("middle", nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = goalRequest("", nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGoalCommand(t *testing.T) {
	fake := &fakeHub{}
	srv := fake.server(t)

	out, err := execute(t, "--hub", srv.URL, "goal", "--corner", "sw")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Goal set at SW")
	_, goals := fake.recorded()
	test.That(t, goals, test.ShouldHaveLength, 1)
	test.That(t, goals[0].Corner, test.ShouldEqual, "SW")
}

func TestStatusCommandJSON(t *testing.T) {
	srv := (&fakeHub{}).server(t)

	out, err := execute(t, "--hub", srv.URL, "--json", "status")
	test.That(t, err, test.ShouldBeNil)

	var status hub.Status
	test.That(t, json.Unmarshal([]byte(out), &status), test.ShouldBeNil)
	test.That(t, status.ConnectedSimulators, test.ShouldEqual, 1)
	test.That(t, status.CollisionCount, test.ShouldEqual, 2)
}

func TestDetectCommand(t *testing.T) {
	frame := filepath.Join(t.TempDir(), "frame.png")
	test.That(t, render.SavePNG(frame, render.Scene{
		Width:       650,
		Height:      600,
		Obstacles:   []planner.Obstacle{{Center: r2.Point{X: 300, Y: 300}, Radius: 15}},
		Robot:       r2.Point{X: 100, Y: 100},
		Goal:        r2.Point{X: 500, Y: 500},
		RobotRadius: 18,
	}), test.ShouldBeNil)

	out, err := execute(t, "--json", "detect", "--image", frame)
	test.That(t, err, test.ShouldBeNil)

	var det vision.Detection
	test.That(t, json.Unmarshal([]byte(out), &det), test.ShouldBeNil)
	test.That(t, det.Robot.X, test.ShouldAlmostEqual, 100, 1)
	test.That(t, det.Goal.Y, test.ShouldAlmostEqual, 500, 1)
	test.That(t, det.Obstacles, test.ShouldHaveLength, 1)

	_, err = execute(t, "detect", "--image", filepath.Join(t.TempDir(), "missing.png"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlanCommandGridScene(t *testing.T) {
	rendered := filepath.Join(t.TempDir(), "plan.png")
	out, err := execute(t, "--json", "plan", "--out", rendered)
	test.That(t, err, test.ShouldBeNil)

	var plan navigator.Plan
	test.That(t, json.Unmarshal([]byte(out), &plan), test.ShouldBeNil)
	test.That(t, plan.Waypoints[0], test.ShouldResemble, r2.Point{X: 320, Y: 300})
	test.That(t, plan.Waypoints[len(plan.Waypoints)-1], test.ShouldResemble, r2.Point{X: 550, Y: 80})

	_, err = os.Stat(rendered)
	test.That(t, err, test.ShouldBeNil)
}

func TestNavigateGridCommand(t *testing.T) {
	fake := &fakeHub{goal: hub.Point{X: 550, Y: 80}}
	srv := fake.server(t)
	cfg := writeConfig(t, `{"execution": {"grid_settle": "1ms"}}`)
	report := filepath.Join(t.TempDir(), "run.json")

	out, err := execute(t, "--config", cfg, "--hub", srv.URL, "navigate", "grid", "--report", report)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Goal reached")

	res, err := navigator.LoadReport(report)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.State, test.ShouldEqual, navigator.StateGoalReached)
	moves, _ := fake.recorded()
	test.That(t, res.Steps, test.ShouldEqual, len(moves))
	test.That(t, res.Cycles[0].Obstacles, test.ShouldEqual, 8)
}

func TestNavigateGridCommandGoalNotReached(t *testing.T) {
	fake := &fakeHub{goal: hub.Point{X: -1, Y: -1}}
	srv := fake.server(t)
	cfg := writeConfig(t, `{"execution": {"grid_settle": "1ms"}}`)

	out, err := execute(t, "--config", cfg, "--hub", srv.URL, "navigate", "grid", "--goal", "600,500")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out, test.ShouldContainSubstring, "GoalNotReached")
	moves, _ := fake.recorded()
	test.That(t, moves[len(moves)-1], test.ShouldResemble, hub.Point{X: 600, Y: 500})
}
