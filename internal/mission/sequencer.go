package mission

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/skycircuit/hoopmission/internal/types"
)

// Sequencer drives an ordered list of modes, one active at a time. Each tick
// it calls Update then CheckStatus on the active mode; when the mode reports
// complete it calls Exit and advances. Cancelling the context exits the
// active mode at the next tick without advancing further.
type Sequencer struct {
	drone string
	tick  time.Duration
	mc    *Context
	post  types.PostFn
	modes []Mode
}

func NewSequencer(drone string, tick time.Duration, mc *Context, post types.PostFn, modes ...Mode) *Sequencer {
	return &Sequencer{drone, tick, mc, post, modes}
}

func (s *Sequencer) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for _, mode := range s.modes {
		log.Printf("Sequencer: entering mode %s", mode.Name())
		s.post(types.CreateEvent("mode-entered", s.drone, types.ModeEntered{Mode: mode.Name()}))
		mode.Enter()

		var last time.Time
		for done := false; !done; {
			select {
			case <-ctx.Done():
				mode.Exit()
				log.Printf("Sequencer: cancelled during %s", mode.Name())
				return
			case now := <-ticker.C:
				// First tick after enter has dt = 0 by definition.
				var dt time.Duration
				if !last.IsZero() {
					dt = now.Sub(last)
				}
				last = now

				mode.Update(dt)
				done = mode.CheckStatus() == StatusComplete
			}
		}

		mode.Exit()
		s.post(types.CreateEvent("mode-completed", s.drone, types.ModeCompleted{
			Mode:       mode.Name(),
			Discovered: len(s.mc.Discovered),
			RouteLen:   len(s.mc.Route),
			Traversed:  len(s.mc.Traversed),
		}))
	}

	log.Printf("Sequencer: mission complete, %d hoops traversed", len(s.mc.Traversed))
	s.post(types.CreateEvent("mission-completed", s.drone, types.MissionCompleted{Traversed: len(s.mc.Traversed)}))
}
