package modes

import (
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/vehicle"
)

// Land triggers the vehicle's landing primitive, falling back to a
// ground-level position setpoint when the primitive is missing.
type Land struct {
	uav vehicle.Vehicle

	groundTolM float64

	fallback  bool
	target    r3.Vec
	targetSet bool
}

func NewLand(uav vehicle.Vehicle, cfg config.Land) *Land {
	return &Land{
		uav:        uav,
		groundTolM: cfg.GroundTolM,
	}
}

func (m *Land) Name() string { return "Land" }

func (m *Land) Enter() {
	m.fallback = false
	m.targetSet = false
	if res := m.uav.Land(); res.Succeeded() {
		log.Printf("Land: landing commanded")
		return
	}
	log.Printf("Land: no landing primitive - descending on position setpoint")
	m.fallback = true
	m.resolveTarget()
}

func (m *Land) Update(dt time.Duration) {
	if !m.fallback {
		return
	}
	if !m.targetSet && !m.resolveTarget() {
		return
	}
	m.uav.PublishPositionSetpoint(m.target)
}

func (m *Land) CheckStatus() mission.Status {
	pose, ok := m.uav.CurrentPose()
	if !ok {
		return mission.StatusContinue
	}
	if math.Abs(pose.Position.Z) <= m.groundTolM {
		log.Printf("Land: on ground")
		return mission.StatusComplete
	}
	return mission.StatusContinue
}

func (m *Land) Exit() {}

func (m *Land) resolveTarget() bool {
	pose, ok := m.uav.CurrentPose()
	if !ok {
		return false
	}
	// Ground level is z=0 in the local NED frame.
	m.target = r3.Vec{X: pose.Position.X, Y: pose.Position.Y}
	m.targetSet = true
	return true
}
