package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/types"
	"github.com/skycircuit/hoopmission/internal/vehicle"
)

func newPlanRouteEnv() (*vehicle.Mock, *mission.Context) {
	mock := vehicle.NewMock()
	mock.SetPose(types.Pose{})
	return mock, &mission.Context{}
}

func TestPlanRoute_GreedyNearestNeighborScenario(t *testing.T) {
	mock, mc := newPlanRouteEnv()

	// Duplicate-position records are distinct entries here: value dedup is
	// the scan mode's job, not the planner's.
	points := []r3.Vec{
		{X: 0, Y: 5, Z: 0},
		{X: 10, Y: 5, Z: 0},
		{X: 0, Y: 5, Z: 0},
		{X: 20, Y: 0, Z: 0},
		{X: 30, Y: 30, Z: 0},
	}

	m := NewPlanRoute(mock, mc, config.PlanRoute{PreApproachDistM: 3.5, MaxTargets: 4}).WithPoints(points...)
	m.Enter()

	require.Len(t, mc.Route, 4)
	assert.Equal(t, r3.Vec{X: 0, Y: 5, Z: 0}, mc.Route[0].HoopPos)
	assert.Equal(t, r3.Vec{X: 0, Y: 5, Z: 0}, mc.Route[1].HoopPos)
	assert.Equal(t, r3.Vec{X: 10, Y: 5, Z: 0}, mc.Route[2].HoopPos)
	assert.Equal(t, r3.Vec{X: 20, Y: 0, Z: 0}, mc.Route[3].HoopPos)

	for _, entry := range mc.Route {
		assert.NotEqual(t, r3.Vec{X: 30, Y: 30, Z: 0}, entry.HoopPos)
	}

	assert.Equal(t, mission.StatusComplete, m.CheckStatus())
}

func TestPlanRoute_Deterministic(t *testing.T) {
	points := []r3.Vec{
		{X: 3, Y: 4, Z: 0},
		{X: 4, Y: 3, Z: 0}, // same distance from origin as the first
		{X: 1, Y: 1, Z: 0},
	}

	mock, mc1 := newPlanRouteEnv()
	NewPlanRoute(mock, mc1, config.PlanRoute{PreApproachDistM: 3.5, MaxTargets: 4}).WithPoints(points...).Enter()

	_, mc2 := newPlanRouteEnv()
	NewPlanRoute(mock, mc2, config.PlanRoute{PreApproachDistM: 3.5, MaxTargets: 4}).WithPoints(points...).Enter()

	require.Equal(t, len(mc1.Route), len(mc2.Route))
	for i := range mc1.Route {
		assert.Equal(t, mc1.Route[i].HoopPos, mc2.Route[i].HoopPos)
	}

	// Ties break toward the first-encountered record.
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 0}, mc1.Route[0].HoopPos)
	assert.Equal(t, r3.Vec{X: 3, Y: 4, Z: 0}, mc1.Route[1].HoopPos)
}

func TestPlanRoute_MaxTargetsAndNoRevisit(t *testing.T) {
	mock, mc := newPlanRouteEnv()
	mc.Discovered = []types.Hoop{
		{ID: "a", Position: r3.Vec{X: 1}},
		{ID: "b", Position: r3.Vec{X: 2}},
		{ID: "c", Position: r3.Vec{X: 3}},
	}

	NewPlanRoute(mock, mc, config.PlanRoute{PreApproachDistM: 1.0, MaxTargets: 2}).Enter()

	require.Len(t, mc.Route, 2)
	seen := map[string]bool{}
	for _, entry := range mc.Route {
		assert.False(t, seen[entry.Hoop.ID], "hoop %s planned twice", entry.Hoop.ID)
		seen[entry.Hoop.ID] = true
	}
}

func TestPlanRoute_EmptyInputCompletesSameTick(t *testing.T) {
	mock, mc := newPlanRouteEnv()
	mc.Route = []types.RouteEntry{{HoopPos: r3.Vec{X: 9}}} // stale route gets replaced

	m := NewPlanRoute(mock, mc, config.PlanRoute{PreApproachDistM: 3.5, MaxTargets: 4})
	m.Enter()

	assert.Empty(t, mc.Route)
	assert.Equal(t, mission.StatusComplete, m.CheckStatus())
}

func TestPlanRoute_ApproachNormalFromBearing(t *testing.T) {
	mock, mc := newPlanRouteEnv()
	// Bearing points along +Y.
	mc.Discovered = []types.Hoop{{ID: "a", Position: r3.Vec{X: 2, Y: 10, Z: -3}, Bearing: 1.5707963267948966, HasBearing: true}}

	NewPlanRoute(mock, mc, config.PlanRoute{PreApproachDistM: 3.5, MaxTargets: 4}).Enter()

	require.Len(t, mc.Route, 1)
	pre := mc.Route[0].PreApproach
	assert.InDelta(t, 2.0, pre.X, 1e-9)
	assert.InDelta(t, 6.5, pre.Y, 1e-9)
	assert.InDelta(t, -3.0, pre.Z, 1e-9) // z unchanged
}

func TestPlanRoute_ApproachNormalFromHome(t *testing.T) {
	mock, mc := newPlanRouteEnv()
	mc.Home = types.Pose{Position: r3.Vec{X: 0, Y: 0, Z: 0}}
	mc.HomeSet = true
	mc.Discovered = []types.Hoop{{ID: "a", Position: r3.Vec{X: 10, Y: 0, Z: -2}}}

	NewPlanRoute(mock, mc, config.PlanRoute{PreApproachDistM: 3.5, MaxTargets: 4}).Enter()

	require.Len(t, mc.Route, 1)
	pre := mc.Route[0].PreApproach
	assert.InDelta(t, 6.5, pre.X, 1e-9)
	assert.InDelta(t, 0.0, pre.Y, 1e-9)
	assert.InDelta(t, -2.0, pre.Z, 1e-9)
}

func TestPlanRoute_ZeroLengthNormalFallsBack(t *testing.T) {
	mock, mc := newPlanRouteEnv()
	mc.Home = types.Pose{Position: r3.Vec{X: 5, Y: 5, Z: 0}}
	mc.HomeSet = true
	// Hoop directly over home: home-to-hoop XY direction is undefined.
	mc.Discovered = []types.Hoop{{ID: "a", Position: r3.Vec{X: 5, Y: 5, Z: -4}}}

	NewPlanRoute(mock, mc, config.PlanRoute{PreApproachDistM: 2.0, MaxTargets: 4}).Enter()

	require.Len(t, mc.Route, 1)
	pre := mc.Route[0].PreApproach
	assert.InDelta(t, 5.0, pre.X, 1e-9)
	assert.InDelta(t, 3.0, pre.Y, 1e-9)
	assert.InDelta(t, -4.0, pre.Z, 1e-9)
}

func TestPlanRoute_ExplicitPointsTakePriority(t *testing.T) {
	mock, mc := newPlanRouteEnv()
	mc.Discovered = []types.Hoop{{ID: "a", Position: r3.Vec{X: 100}}}

	NewPlanRoute(mock, mc, config.PlanRoute{PreApproachDistM: 1.0, MaxTargets: 4}).
		WithPoints(r3.Vec{X: 1, Y: 2, Z: 3}).
		Enter()

	require.Len(t, mc.Route, 1)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, mc.Route[0].HoopPos)
}
