// Package modes implements the mission phases: each mode is one control law
// plus its completion test, behind the mission.Mode lifecycle contract.
package modes

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
