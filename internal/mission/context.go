package mission

import "github.com/skycircuit/hoopmission/internal/types"

// Context carries the shared mission state between modes: the only channel
// through which modes communicate. Fields are mutated by at most one mode at
// a time (the active one) and read by later modes after handoff, so no
// locking is needed.
type Context struct {
	Discovered []types.Hoop
	Route      []types.RouteEntry
	Traversed  []types.RouteEntry
	Home       types.Pose
	HomeSet    bool
}
