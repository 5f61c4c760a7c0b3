package navigator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestReportRoundTrip(t *testing.T) {
	sim := &fakeSim{goal: gridGoal, reach: 5, collideOn: map[int]bool{2: true}}
	res, err := gridNavigator(t, sim, noSettle(ModeGrid)).Run(context.Background())
	test.That(t, err, test.ShouldBeNil)

	path := filepath.Join(t.TempDir(), "run.json")
	test.That(t, SaveReport(res, path), test.ShouldBeNil)

	loaded, err := LoadReport(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.RunID, test.ShouldEqual, res.RunID)
	test.That(t, loaded.Mode, test.ShouldEqual, ModeGrid)
	test.That(t, loaded.State, test.ShouldEqual, StateGoalReached)
	test.That(t, loaded.States, test.ShouldResemble, res.States)
	test.That(t, loaded.Cycles, test.ShouldHaveLength, 2)
	test.That(t, loaded.Executed(), test.ShouldResemble, sim.moves)
}

func TestResultBound(t *testing.T) {
	res := &Result{Cycles: []Cycle{
		{Waypoints: []r2.Point{{X: 10, Y: 20}, {X: 40, Y: 5}}, Executed: 1},
		{Waypoints: []r2.Point{{X: 30, Y: 60}}, Executed: 1},
	}}
	b := res.Bound()
	test.That(t, b.Min.X(), test.ShouldEqual, 10.0)
	test.That(t, b.Min.Y(), test.ShouldEqual, 5.0)
	test.That(t, b.Max.X(), test.ShouldEqual, 40.0)
	test.That(t, b.Max.Y(), test.ShouldEqual, 60.0)
	test.That(t, res.Executed(), test.ShouldResemble, []r2.Point{{X: 10, Y: 20}, {X: 30, Y: 60}})

	test.That(t, (&Result{}).Bound().IsZero(), test.ShouldBeTrue)

	_, err := LoadReport(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}
