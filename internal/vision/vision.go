package vision

import (
	"sync"

	"github.com/skycircuit/hoopmission/internal/types"
)

// Provider exposes the latest vision detections. Implementations must be
// non-blocking: the returned slice is a point-in-time snapshot, not a
// subscription. An empty result means "no data this tick".
type Provider interface {
	LatestDetections() []types.Detection
}

// Static holds a snapshot set externally. Used by tests and by the
// simulation run mode, where the detection set comes from the config file.
type Static struct {
	mu   sync.Mutex
	dets []types.Detection
}

func NewStatic(dets ...types.Detection) *Static {
	return &Static{dets: dets}
}

func (s *Static) Set(dets ...types.Detection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dets = dets
}

func (s *Static) LatestDetections() []types.Detection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Detection(nil), s.dets...)
}

// Scripted returns one prepared frame per call, then nothing. Tests use it
// to feed a deterministic detection sequence tick by tick.
type Scripted struct {
	mu     sync.Mutex
	frames [][]types.Detection
}

func NewScripted(frames ...[]types.Detection) *Scripted {
	return &Scripted{frames: frames}
}

func (s *Scripted) LatestDetections() []types.Detection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	frame := s.frames[0]
	s.frames = s.frames[1:]
	return frame
}
