package modes

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/types"
	"github.com/skycircuit/hoopmission/internal/vehicle"
	"github.com/skycircuit/hoopmission/internal/vision"
)

// LaunchAndScan arms, takes off and performs an in-place yaw scan collecting
// hoop detections. A missing arm or takeoff primitive is non-fatal: the mode
// degrades to spinning until the sweep budget is exhausted.
type LaunchAndScan struct {
	uav  vehicle.Vehicle
	eyes vision.Provider
	mc   *mission.Context

	takeoffAltM    float64
	spinMaxDeg     float64
	spinRateDPS    float64
	minHoopsToStop int

	useVelocitySetpoint bool

	collected   []types.Hoop
	scannedDeg  float64
	lastUpdate  time.Time
	homeCand    types.Pose
	homeCandSet bool

	now func() time.Time
}

func NewLaunchAndScan(uav vehicle.Vehicle, eyes vision.Provider, mc *mission.Context, cfg config.LaunchScan) *LaunchAndScan {
	return &LaunchAndScan{
		uav:            uav,
		eyes:           eyes,
		mc:             mc,
		takeoffAltM:    cfg.TakeoffAltM,
		spinMaxDeg:     cfg.SpinMaxDeg,
		spinRateDPS:    cfg.SpinRateDPS,
		minHoopsToStop: cfg.MinHoopsToStop,
		now:            time.Now,
	}
}

func (m *LaunchAndScan) Name() string { return "LaunchAndScan" }

func (m *LaunchAndScan) Enter() {
	log.Printf("LaunchAndScan: arming and preparing to takeoff")
	m.useVelocitySetpoint = m.uav.Capabilities().VelocitySetpoint

	if res := m.uav.EnableOffboardHeartbeat(); !res.Succeeded() {
		log.Printf("LaunchAndScan: offboard heartbeat unavailable - continuing")
	}
	if res := m.uav.Arm(); !res.Succeeded() {
		log.Printf("LaunchAndScan: arm not available - continuing")
	}
	if res := m.uav.Takeoff(m.takeoffAltM); !res.Succeeded() {
		// No takeoff primitive: command a climb setpoint instead.
		if res := m.uav.PublishPositionSetpoint(r3.Vec{Z: -math.Abs(m.takeoffAltM)}); !res.Succeeded() {
			log.Printf("LaunchAndScan: no takeoff method - ensure vehicle is at altitude")
		}
	}

	m.collected = nil
	m.scannedDeg = 0
	m.lastUpdate = time.Time{}

	if pose, ok := m.uav.CurrentPose(); ok {
		m.homeCand = pose
		m.homeCandSet = true
		log.Printf("LaunchAndScan: saved home pose candidate: %+v", pose.Position)
	} else {
		m.homeCandSet = false
	}
}

func (m *LaunchAndScan) Update(dt time.Duration) {
	_ = dt // sweep integration uses its own wall clock below

	yawRate := m.spinRateDPS * math.Pi / 180
	if m.useVelocitySetpoint {
		m.uav.PublishVelocitySetpoint(vehicle.Velocity{YawRate: yawRate})
	} else {
		m.uav.SetYawRate(yawRate)
	}

	for _, d := range m.eyes.LatestDetections() {
		if !d.HasPosition {
			// Pixel-only detections carry no target position to collect.
			continue
		}
		cand := types.Hoop{Position: d.Position, Bearing: d.Bearing, HasBearing: d.HasBearing}
		if m.seen(cand) {
			continue
		}
		cand.ID = uuid.New().String()
		m.collected = append(m.collected, cand)
	}

	// The running set is visible to the planner even mid-scan.
	m.mc.Discovered = append([]types.Hoop(nil), m.collected...)

	now := m.now()
	if !m.lastUpdate.IsZero() {
		m.scannedDeg += math.Abs(m.spinRateDPS) * now.Sub(m.lastUpdate).Seconds()
	}
	m.lastUpdate = now
}

func (m *LaunchAndScan) CheckStatus() mission.Status {
	if len(m.collected) >= m.minHoopsToStop {
		log.Printf("LaunchAndScan: found %d hoops - finishing scan", len(m.collected))
		m.commitHome()
		return mission.StatusComplete
	}
	if m.scannedDeg >= m.spinMaxDeg {
		log.Printf("LaunchAndScan: scan exhausted - finishing")
		m.commitHome()
		return mission.StatusComplete
	}
	return mission.StatusContinue
}

func (m *LaunchAndScan) Exit() {}

func (m *LaunchAndScan) seen(cand types.Hoop) bool {
	for _, h := range m.collected {
		if h.SameTarget(cand) {
			return true
		}
	}
	return false
}

func (m *LaunchAndScan) commitHome() {
	if !m.mc.HomeSet && m.homeCandSet {
		m.mc.Home = m.homeCand
		m.mc.HomeSet = true
	}
}
