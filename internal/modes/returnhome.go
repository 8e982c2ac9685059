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

// ReturnHome flies to the recorded home pose and holds. With no recorded
// home it falls back to the current pose, which completes immediately since
// the distance is zero.
type ReturnHome struct {
	uav vehicle.Vehicle
	mc  *mission.Context

	tolM float64

	home    r3.Vec
	homeSet bool
}

func NewReturnHome(uav vehicle.Vehicle, mc *mission.Context, cfg config.ReturnHome) *ReturnHome {
	return &ReturnHome{
		uav:  uav,
		mc:   mc,
		tolM: cfg.TolM,
	}
}

func (m *ReturnHome) Name() string { return "ReturnHome" }

func (m *ReturnHome) Enter() {
	m.homeSet = false
	if m.mc.HomeSet {
		m.home = m.mc.Home.Position
		m.homeSet = true
	} else if pose, ok := m.uav.CurrentPose(); ok {
		m.home = pose.Position
		m.homeSet = true
	}
	log.Printf("ReturnHome: home=%+v resolved=%v", m.home, m.homeSet)
}

func (m *ReturnHome) Update(dt time.Duration) {
	if !m.homeSet {
		// No home and no pose at enter: resolve once telemetry returns.
		pose, ok := m.uav.CurrentPose()
		if !ok {
			return
		}
		m.home = pose.Position
		m.homeSet = true
	}
	m.uav.PublishPositionSetpoint(m.home)
}

func (m *ReturnHome) CheckStatus() mission.Status {
	if !m.homeSet {
		return mission.StatusContinue
	}
	pose, ok := m.uav.CurrentPose()
	if !ok {
		return mission.StatusContinue
	}
	if types.Distance(pose.Position, m.home) <= m.tolM {
		log.Printf("ReturnHome: reached home")
		return mission.StatusComplete
	}
	return mission.StatusContinue
}

func (m *ReturnHome) Exit() {}
