package modes

import (
	"log"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/types"
	"github.com/skycircuit/hoopmission/internal/vehicle"
)

// GoToPreApproach flies to the front route entry's pre-approach waypoint,
// yawing toward the hoop when its bearing is known so the camera points at
// the target on arrival.
type GoToPreApproach struct {
	uav vehicle.Vehicle
	mc  *mission.Context

	waypointTolM float64

	target    r3.Vec
	targetSet bool
	hoop      types.Hoop
	useYaw    bool
}

func NewGoToPreApproach(uav vehicle.Vehicle, mc *mission.Context, cfg config.PreApproach) *GoToPreApproach {
	return &GoToPreApproach{
		uav:          uav,
		mc:           mc,
		waypointTolM: cfg.WaypointTolM,
	}
}

func (m *GoToPreApproach) Name() string { return "GoToPreApproach" }

func (m *GoToPreApproach) Enter() {
	if len(m.mc.Route) == 0 {
		log.Printf("GoToPreApproach: no planned route - completing")
		m.targetSet = false
		return
	}
	entry := m.mc.Route[0]
	m.target = entry.PreApproach
	m.hoop = entry.Hoop
	m.targetSet = true
	m.useYaw = m.hoop.HasBearing && m.uav.Capabilities().PositionYaw
	log.Printf("GoToPreApproach: target=%+v", m.target)
}

func (m *GoToPreApproach) Update(dt time.Duration) {
	if !m.targetSet {
		return
	}
	if m.useYaw {
		if res := m.uav.PublishPositionSetpointWithYaw(m.target, m.hoop.Bearing); res.Succeeded() {
			return
		}
		m.useYaw = false
	}
	m.uav.PublishPositionSetpoint(m.target)
}

func (m *GoToPreApproach) CheckStatus() mission.Status {
	if !m.targetSet {
		return mission.StatusComplete
	}
	pose, ok := m.uav.CurrentPose()
	if !ok {
		return mission.StatusContinue
	}
	if types.Distance(pose.Position, m.target) <= m.waypointTolM {
		log.Printf("GoToPreApproach: reached pre-approach waypoint")
		return mission.StatusComplete
	}
	return mission.StatusContinue
}

func (m *GoToPreApproach) Exit() {}
