package vehicle

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/types"
)

// Status of a single vehicle command.
type Status int

const (
	OK Status = iota
	Unsupported
	Failed
)

// Result is the outcome of one fire-and-forget vehicle command. Missing
// primitives report Unsupported so the caller can take its documented
// fallback instead of aborting.
type Result struct {
	Status Status
	Err    error
}

func Ok() Result {
	return Result{Status: OK}
}

func NotSupported(command string) Result {
	return Result{Status: Unsupported, Err: fmt.Errorf("%s not supported", command)}
}

func Failure(err error) Result {
	return Result{Status: Failed, Err: err}
}

func (r Result) Succeeded() bool {
	return r.Status == OK
}

// Velocity is a local-frame velocity setpoint with yaw rate (rad/s).
type Velocity struct {
	VX      float64
	VY      float64
	VZ      float64
	YawRate float64
}

// Capabilities describes which commands a vehicle supports. It is fixed at
// construction so modes resolve their fallback path once instead of probing
// on every tick.
type Capabilities struct {
	PositionSetpoint  bool
	PositionYaw       bool
	VelocitySetpoint  bool // combined velocity + yaw rate
	Velocity          bool // translational only
	YawRate           bool
	Arm               bool
	Takeoff           bool
	Land              bool
	OffboardHeartbeat bool
}

// Vehicle is the command and telemetry surface the mission modes fly
// against. Setpoint commands are fire-and-forget and last-write-wins at the
// flight stack.
type Vehicle interface {
	Capabilities() Capabilities

	// CurrentPose returns the latest estimated pose. ok is false when no
	// estimate is available; callers treat that as "no new information".
	CurrentPose() (pose types.Pose, ok bool)

	PublishPositionSetpoint(p r3.Vec) Result
	PublishPositionSetpointWithYaw(p r3.Vec, yaw float64) Result
	PublishVelocitySetpoint(v Velocity) Result
	SetVelocity(v r3.Vec) Result
	SetYawRate(rate float64) Result

	Arm() Result
	Takeoff(altitude float64) Result
	Land() Result
	EnableOffboardHeartbeat() Result
}
