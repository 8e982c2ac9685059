package modes

import (
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/vehicle"
	"github.com/skycircuit/hoopmission/internal/vision"
)

// CenterInImage is image-based visual servoing: clamped proportional
// velocity commands drive the pixel error of the nearest hoop toward zero
// and hold it at a target apparent radius (a proxy for standoff distance).
// The mode completes when centered at the right size, or on timeout so a
// lost or noisy detection degrades to a re-observation later in the mission
// instead of stalling it.
type CenterInImage struct {
	uav  vehicle.Vehicle
	eyes vision.Provider

	kx, ky, kz, kyaw float64
	vmaxXY, vmaxZ    float64
	vmaxYaw          float64 // rad/s
	centerTolPx      float64
	radiusTargetPx   float64
	timeout          time.Duration

	// standoffAltM is the altitude-hold target for the vz term. NaN holds
	// the target at the current altitude, making vertical correction a
	// no-op; it is kept as a tuning hook rather than removed.
	standoffAltM float64

	useVelocityYaw bool
	start          time.Time

	now func() time.Time
}

func NewCenterInImage(uav vehicle.Vehicle, eyes vision.Provider, cfg config.CenterImage) *CenterInImage {
	standoff := math.NaN()
	if cfg.StandoffAltM != nil {
		standoff = *cfg.StandoffAltM
	}
	return &CenterInImage{
		uav:            uav,
		eyes:           eyes,
		kx:             cfg.KX,
		ky:             cfg.KY,
		kz:             cfg.KZ,
		kyaw:           cfg.KYaw,
		vmaxXY:         cfg.VMaxXY,
		vmaxZ:          cfg.VMaxZ,
		vmaxYaw:        cfg.VMaxYawDPS * math.Pi / 180,
		centerTolPx:    cfg.CenterTolPx,
		radiusTargetPx: cfg.RadiusTargetPx,
		timeout:        time.Duration(cfg.TimeoutS * float64(time.Second)),
		standoffAltM:   standoff,
		now:            time.Now,
	}
}

func (m *CenterInImage) Name() string { return "CenterInImage" }

func (m *CenterInImage) Enter() {
	log.Printf("CenterInImage: starting visual servoing")
	m.start = m.now()
	m.useVelocityYaw = m.uav.Capabilities().VelocitySetpoint
}

func (m *CenterInImage) Update(dt time.Duration) {
	dets := m.eyes.LatestDetections()
	if len(dets) == 0 {
		// No detection this tick: issue no command.
		return
	}
	d := dets[0]

	curZ := 0.0
	if pose, ok := m.uav.CurrentPose(); ok {
		curZ = pose.Position.Z
	}
	zTarget := m.standoffAltM
	if math.IsNaN(zTarget) {
		zTarget = curZ
	}

	vx := clamp(-m.kx*d.EX, -m.vmaxXY, m.vmaxXY)
	vy := clamp(m.ky*d.EY, -m.vmaxXY, m.vmaxXY)
	vz := clamp(m.kz*(zTarget-curZ), -m.vmaxZ, m.vmaxZ)
	yawRate := clamp(m.kyaw*d.EX, -m.vmaxYaw, m.vmaxYaw)

	if m.useVelocityYaw {
		if res := m.uav.PublishVelocitySetpoint(vehicle.Velocity{VX: vx, VY: vy, VZ: vz, YawRate: yawRate}); res.Succeeded() {
			return
		}
		m.useVelocityYaw = false
	}
	// Yaw uncontrolled on the fallback path.
	m.uav.SetVelocity(r3.Vec{X: vx, Y: vy, Z: vz})
}

func (m *CenterInImage) CheckStatus() mission.Status {
	if dets := m.eyes.LatestDetections(); len(dets) > 0 {
		d := dets[0]
		centered := math.Abs(d.EX) <= m.centerTolPx && math.Abs(d.EY) <= m.centerTolPx
		atSize := math.Abs(d.Radius-m.radiusTargetPx) <= 0.15*m.radiusTargetPx
		if centered && atSize {
			log.Printf("CenterInImage: centered and at traverse distance")
			return mission.StatusComplete
		}
	}
	if m.now().Sub(m.start) > m.timeout {
		log.Printf("CenterInImage: timeout - proceeding to reobserve")
		return mission.StatusComplete
	}
	return mission.StatusContinue
}

func (m *CenterInImage) Exit() {}
