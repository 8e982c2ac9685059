package vehicle

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/types"
)

// Mock is an in-memory vehicle used by tests and the "-vehicle mock" run
// mode. It integrates position and velocity setpoints kinematically when
// stepped; setpoints are last-write-wins, so a velocity setpoint replaces a
// pending position target and vice versa.
type Mock struct {
	mu     sync.Mutex
	caps   Capabilities
	cruise float64 // m/s toward position targets

	pose   types.Pose
	poseOK bool

	posTarget    r3.Vec
	posYaw       float64
	hasPosTarget bool
	hasYawTarget bool
	vel          Velocity
	hasVel       bool

	armed     bool
	airborne  bool
	heartbeat bool

	commands []string
}

func NewMock() *Mock {
	return &Mock{
		caps: Capabilities{
			PositionSetpoint:  true,
			PositionYaw:       true,
			VelocitySetpoint:  true,
			Velocity:          true,
			YawRate:           true,
			Arm:               true,
			Takeoff:           true,
			Land:              true,
			OffboardHeartbeat: true,
		},
		cruise: 2.0,
		poseOK: true,
	}
}

// SetCapabilities removes or restores command primitives, simulating a
// flight stack that lacks them.
func (m *Mock) SetCapabilities(caps Capabilities) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caps = caps
}

func (m *Mock) Capabilities() Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps
}

func (m *Mock) SetPose(pose types.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = pose
	m.poseOK = true
}

// ClearPose simulates a telemetry dropout.
func (m *Mock) ClearPose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poseOK = false
}

func (m *Mock) CurrentPose() (types.Pose, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pose, m.poseOK
}

func (m *Mock) PublishPositionSetpoint(p r3.Vec) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.PositionSetpoint {
		return NotSupported("position setpoint")
	}
	m.posTarget = p
	m.hasPosTarget = true
	m.hasYawTarget = false
	m.hasVel = false
	m.commands = append(m.commands, "position")
	return Ok()
}

func (m *Mock) PublishPositionSetpointWithYaw(p r3.Vec, yaw float64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.PositionYaw {
		return NotSupported("position+yaw setpoint")
	}
	m.posTarget = p
	m.posYaw = yaw
	m.hasPosTarget = true
	m.hasYawTarget = true
	m.hasVel = false
	m.commands = append(m.commands, "position+yaw")
	return Ok()
}

func (m *Mock) PublishVelocitySetpoint(v Velocity) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.VelocitySetpoint {
		return NotSupported("velocity setpoint")
	}
	m.vel = v
	m.hasVel = true
	m.hasPosTarget = false
	m.commands = append(m.commands, "velocity")
	return Ok()
}

func (m *Mock) SetVelocity(v r3.Vec) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.Velocity {
		return NotSupported("velocity")
	}
	m.vel = Velocity{VX: v.X, VY: v.Y, VZ: v.Z}
	m.hasVel = true
	m.hasPosTarget = false
	m.commands = append(m.commands, "set-velocity")
	return Ok()
}

func (m *Mock) SetYawRate(rate float64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.YawRate {
		return NotSupported("yaw rate")
	}
	m.vel.YawRate = rate
	m.hasVel = true
	m.commands = append(m.commands, "yaw-rate")
	return Ok()
}

func (m *Mock) Arm() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.Arm {
		return NotSupported("arm")
	}
	m.armed = true
	m.commands = append(m.commands, "arm")
	return Ok()
}

func (m *Mock) Takeoff(altitude float64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.Takeoff {
		return NotSupported("takeoff")
	}
	m.posTarget = r3.Vec{X: m.pose.Position.X, Y: m.pose.Position.Y, Z: -math.Abs(altitude)}
	m.hasPosTarget = true
	m.hasVel = false
	m.airborne = true
	m.commands = append(m.commands, "takeoff")
	return Ok()
}

func (m *Mock) Land() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.Land {
		return NotSupported("land")
	}
	m.posTarget = r3.Vec{X: m.pose.Position.X, Y: m.pose.Position.Y}
	m.hasPosTarget = true
	m.hasVel = false
	m.commands = append(m.commands, "land")
	return Ok()
}

func (m *Mock) EnableOffboardHeartbeat() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.caps.OffboardHeartbeat {
		return NotSupported("offboard heartbeat")
	}
	m.heartbeat = true
	m.commands = append(m.commands, "heartbeat")
	return Ok()
}

// Step advances the kinematic simulation by dt.
func (m *Mock) Step(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasVel {
		m.pose.Position = r3.Add(m.pose.Position, r3.Scale(dt, r3.Vec{X: m.vel.VX, Y: m.vel.VY, Z: m.vel.VZ}))
		m.pose.Yaw += m.vel.YawRate * dt
		return
	}
	if m.hasPosTarget {
		delta := r3.Sub(m.posTarget, m.pose.Position)
		dist := r3.Norm(delta)
		step := m.cruise * dt
		if step >= dist {
			m.pose.Position = m.posTarget
		} else if dist > 0 {
			m.pose.Position = r3.Add(m.pose.Position, r3.Scale(step/dist, delta))
		}
		if m.hasYawTarget {
			m.pose.Yaw = m.posYaw
		}
	}
}

// Commands returns the command trace, oldest first.
func (m *Mock) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

func (m *Mock) CommandCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commands)
}

// LastVelocity returns the most recent velocity setpoint, if one is active.
func (m *Mock) LastVelocity() (Velocity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vel, m.hasVel
}

// PositionTarget returns the active position setpoint, if any.
func (m *Mock) PositionTarget() (r3.Vec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posTarget, m.hasPosTarget
}

// YawTarget returns the commanded yaw from the last position+yaw setpoint.
func (m *Mock) YawTarget() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posYaw, m.hasYawTarget
}

func (m *Mock) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

func (m *Mock) Airborne() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.airborne
}
