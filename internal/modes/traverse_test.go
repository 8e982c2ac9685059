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

func traverseCfg() config.Traverse {
	return config.Traverse{TraverseDistM: 4.0, ReachedTolM: 1.0}
}

func TestCommitTraverse_DefaultNormal(t *testing.T) {
	mock := vehicle.NewMock()
	mock.SetPose(types.Pose{Position: r3.Vec{X: 0, Y: 1.5, Z: 0}})
	hoop := types.Hoop{ID: "a", Position: r3.Vec{X: 0, Y: 5, Z: 0}}
	mc := routeTo(r3.Vec{X: 0, Y: 1.5, Z: 0}, hoop)

	m := NewCommitTraverse(mock, mc, traverseCfg())
	m.Enter()
	m.Update(0)

	// No bearing: traverse along +Y through the hoop.
	target, ok := mock.PositionTarget()
	require.True(t, ok)
	assert.Equal(t, r3.Vec{X: 0, Y: 9, Z: 0}, target)

	require.Equal(t, mission.StatusContinue, m.CheckStatus())

	mock.SetPose(types.Pose{Position: r3.Vec{X: 0, Y: 8.5, Z: 0}})
	m.Update(0)
	require.Equal(t, mission.StatusComplete, m.CheckStatus())

	assert.Empty(t, mc.Route)
	require.Len(t, mc.Traversed, 1)
	assert.Equal(t, "a", mc.Traversed[0].Hoop.ID)
}

func TestCommitTraverse_NormalFromBearing(t *testing.T) {
	mock := vehicle.NewMock()
	mock.SetPose(types.Pose{})
	hoop := types.Hoop{ID: "a", Position: r3.Vec{X: 0, Y: 5, Z: -2}, Bearing: 0, HasBearing: true}
	mc := routeTo(r3.Vec{X: -3.5, Y: 5, Z: -2}, hoop)

	m := NewCommitTraverse(mock, mc, traverseCfg())
	m.Enter()
	m.Update(0)

	// Bearing 0 rad points along +X.
	target, ok := mock.PositionTarget()
	require.True(t, ok)
	assert.InDelta(t, 4.0, target.X, 1e-9)
	assert.InDelta(t, 5.0, target.Y, 1e-9)
	assert.InDelta(t, -2.0, target.Z, 1e-9)
}

func TestCommitTraverse_BookkeepingNeverLosesEntries(t *testing.T) {
	mock := vehicle.NewMock()
	hoopA := types.Hoop{ID: "a", Position: r3.Vec{X: 0, Y: 5, Z: 0}}
	hoopB := types.Hoop{ID: "b", Position: r3.Vec{X: 10, Y: 5, Z: 0}}
	mc := &mission.Context{
		Route: []types.RouteEntry{
			{Hoop: hoopA, HoopPos: hoopA.Position},
			{Hoop: hoopB, HoopPos: hoopB.Position},
		},
	}

	total := len(mc.Route)

	m := NewCommitTraverse(mock, mc, traverseCfg())
	m.Enter()
	mock.SetPose(types.Pose{Position: r3.Vec{X: 0, Y: 9, Z: 0}})
	m.Update(0)
	require.Equal(t, mission.StatusComplete, m.CheckStatus())

	assert.Equal(t, total, len(mc.Route)+len(mc.Traversed))
	assert.Equal(t, "a", mc.Traversed[0].Hoop.ID)
	assert.Equal(t, "b", mc.Route[0].Hoop.ID)
}

func TestCommitTraverse_EmptyRouteCompletesImmediately(t *testing.T) {
	mock := vehicle.NewMock()
	m := NewCommitTraverse(mock, &mission.Context{}, traverseCfg())
	m.Enter()
	m.Update(0)

	assert.Equal(t, mission.StatusComplete, m.CheckStatus())
	assert.Zero(t, mock.CommandCount())
}

func TestCommitTraverse_HoldsThroughPoseDropout(t *testing.T) {
	mock := vehicle.NewMock()
	hoop := types.Hoop{ID: "a", Position: r3.Vec{X: 0, Y: 5, Z: 0}}
	mc := routeTo(r3.Vec{}, hoop)

	m := NewCommitTraverse(mock, mc, traverseCfg())
	m.Enter()
	mock.ClearPose()
	m.Update(0)

	assert.Equal(t, mission.StatusContinue, m.CheckStatus())
	assert.Len(t, mc.Route, 1)
}
