package mission

import "time"

// Status reported by a mode on every tick.
type Status int

const (
	StatusContinue Status = iota
	StatusComplete
)

func (s Status) String() string {
	if s == StatusComplete {
		return "complete"
	}
	return "continue"
}

// Mode is one mission phase. The sequencer calls Enter once when the mode
// becomes active, then Update followed by CheckStatus on every tick until
// CheckStatus reports StatusComplete, then Exit.
//
// Enter and Update must not block. Update issues at most one vehicle command
// and treats a missing pose or empty detection set as "no new information
// this tick", never as an error. A mode with no achievable target must
// report StatusComplete immediately rather than stall the mission.
type Mode interface {
	Name() string
	Enter()
	Update(dt time.Duration)
	CheckStatus() Status
	Exit()
}
