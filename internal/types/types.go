package types

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is the vehicle's estimated local position and heading.
type Pose struct {
	Position r3.Vec
	Yaw      float64
}

// Detection is a single point-in-time observation from the vision pipeline.
// Either the pixel-space fields (centering error and apparent radius) or the
// resolved position is populated, depending on the detector.
type Detection struct {
	EX     float64 `json:"ex"`
	EY     float64 `json:"ey"`
	Radius float64 `json:"radius"`

	Position    r3.Vec  `json:"position"`
	HasPosition bool    `json:"has_position"`
	Bearing     float64 `json:"bearing"`
	HasBearing  bool    `json:"has_bearing"`
}

// Hoop is a discovered target. Bearing, when known, is the heading from
// which the hoop is intended to be crossed.
type Hoop struct {
	ID         string
	Position   r3.Vec
	Bearing    float64
	HasBearing bool
}

// SameTarget reports whether two hoop records describe the same physical
// target. The ID is excluded: it is assigned at discovery time and two
// records with equal payloads are duplicates regardless of when they were
// collected.
func (h Hoop) SameTarget(o Hoop) bool {
	return h.Position == o.Position && h.HasBearing == o.HasBearing && h.Bearing == o.Bearing
}

// RouteEntry is one planned hoop visit.
type RouteEntry struct {
	Hoop        Hoop
	PreApproach r3.Vec
	HoopPos     r3.Vec
}

// Distance is the 3D Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
