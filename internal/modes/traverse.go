package modes

import (
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/types"
	"github.com/skycircuit/hoopmission/internal/vehicle"
)

// CommitTraverse flies a fixed straight segment through the front hoop along
// its approach normal, then records the hoop as traversed. The end point is
// a single fixed target; the flight stack's inner loop owns the trajectory.
type CommitTraverse struct {
	uav vehicle.Vehicle
	mc  *mission.Context

	traverseDistM float64
	reachedTolM   float64

	start  r3.Vec
	end    r3.Vec
	active bool
}

func NewCommitTraverse(uav vehicle.Vehicle, mc *mission.Context, cfg config.Traverse) *CommitTraverse {
	return &CommitTraverse{
		uav:           uav,
		mc:            mc,
		traverseDistM: cfg.TraverseDistM,
		reachedTolM:   cfg.ReachedTolM,
	}
}

func (m *CommitTraverse) Name() string { return "CommitTraverse" }

func (m *CommitTraverse) Enter() {
	if len(m.mc.Route) == 0 {
		log.Printf("CommitTraverse: no target - completing")
		m.active = false
		return
	}
	entry := m.mc.Route[0]

	normal := defaultNormal
	if entry.Hoop.HasBearing {
		normal = r3.Vec{X: math.Cos(entry.Hoop.Bearing), Y: math.Sin(entry.Hoop.Bearing)}
	}

	// One world unit short of the hoop plane, through to traverseDistM past it.
	m.start = r3.Sub(entry.HoopPos, normal)
	m.end = r3.Add(entry.HoopPos, r3.Scale(m.traverseDistM, normal))
	m.active = true
	log.Printf("CommitTraverse: start=%+v end=%+v", m.start, m.end)
}

func (m *CommitTraverse) Update(dt time.Duration) {
	if !m.active {
		return
	}
	m.uav.PublishPositionSetpoint(m.end)
}

func (m *CommitTraverse) CheckStatus() mission.Status {
	if !m.active {
		return mission.StatusComplete
	}
	pose, ok := m.uav.CurrentPose()
	if !ok {
		return mission.StatusContinue
	}
	if types.Distance(pose.Position, m.end) > m.reachedTolM {
		return mission.StatusContinue
	}

	// Pop and append together: the visited bookkeeping must never lose or
	// duplicate an entry.
	if len(m.mc.Route) > 0 {
		entry := m.mc.Route[0]
		m.mc.Route = m.mc.Route[1:]
		m.mc.Traversed = append(m.mc.Traversed, entry)
	}
	log.Printf("CommitTraverse: hoop traversed")
	return mission.StatusComplete
}

func (m *CommitTraverse) Exit() {}
