package modes

import (
	"log"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/types"
	"github.com/skycircuit/hoopmission/internal/vehicle"
)

// defaultNormal is the approach normal used when a hoop has no bearing and
// sits directly over the home position, where the home-to-hoop direction is
// undefined.
var defaultNormal = r3.Vec{Y: 1}

// PlanRoute orders the discovered hoops with a greedy nearest-neighbor pass
// and computes a standoff pre-approach point for each. This is a heuristic
// tour, not an optimal TSP solve: no backtracking or 2-opt refinement is
// performed. Planning is one-shot at Enter; the mode completes on the same
// tick it becomes active.
type PlanRoute struct {
	uav vehicle.Vehicle
	mc  *mission.Context

	preApproachDist float64
	maxTargets      int

	// points overrides the discovered-hoop set when non-empty. Used for
	// deterministic planning runs.
	points []r3.Vec
}

func NewPlanRoute(uav vehicle.Vehicle, mc *mission.Context, cfg config.PlanRoute) *PlanRoute {
	return &PlanRoute{
		uav:             uav,
		mc:              mc,
		preApproachDist: cfg.PreApproachDistM,
		maxTargets:      cfg.MaxTargets,
	}
}

// WithPoints supplies an explicit point list that takes priority over the
// discovered-hoop set.
func (m *PlanRoute) WithPoints(points ...r3.Vec) *PlanRoute {
	m.points = points
	return m
}

func (m *PlanRoute) Name() string { return "PlanRoute" }

func (m *PlanRoute) Enter() {
	log.Printf("PlanRoute: computing nearest-neighbor route")

	var hoops []types.Hoop
	if len(m.points) > 0 {
		for _, p := range m.points {
			hoops = append(hoops, types.Hoop{Position: p})
		}
	} else {
		hoops = append(hoops, m.mc.Discovered...)
	}
	if len(hoops) == 0 {
		log.Printf("PlanRoute: no hoops discovered - planning empty route")
		m.mc.Route = nil
		return
	}

	cur := r3.Vec{}
	if pose, ok := m.uav.CurrentPose(); ok {
		cur = pose.Position
	}

	remaining := append([]types.Hoop(nil), hoops...)
	order := make([]types.Hoop, 0, len(remaining))
	for len(remaining) > 0 && len(order) < m.maxTargets {
		// Stable sort keeps the first-encountered hoop ahead on ties.
		sort.SliceStable(remaining, func(i, j int) bool {
			return types.Distance(cur, remaining[i].Position) < types.Distance(cur, remaining[j].Position)
		})
		chosen := remaining[0]
		remaining = remaining[1:]
		order = append(order, chosen)
		cur = chosen.Position
	}

	home := r3.Vec{}
	if m.mc.HomeSet {
		home = m.mc.Home.Position
	}

	route := make([]types.RouteEntry, 0, len(order))
	for _, h := range order {
		normal := approachNormal(h, home)
		pre := r3.Sub(h.Position, r3.Scale(m.preApproachDist, normal))
		route = append(route, types.RouteEntry{Hoop: h, PreApproach: pre, HoopPos: h.Position})
	}

	m.mc.Route = route
	log.Printf("PlanRoute: planned %d targets", len(route))
}

func (m *PlanRoute) Update(dt time.Duration) {}

func (m *PlanRoute) CheckStatus() mission.Status { return mission.StatusComplete }

func (m *PlanRoute) Exit() {}

// approachNormal is the unit vector pointing the direction the hoop should
// be crossed: the stored bearing when present, otherwise the home-to-hoop
// direction in the XY plane.
func approachNormal(h types.Hoop, home r3.Vec) r3.Vec {
	if h.HasBearing {
		return r3.Vec{X: math.Cos(h.Bearing), Y: math.Sin(h.Bearing)}
	}
	vx := h.Position.X - home.X
	vy := h.Position.Y - home.Y
	d := math.Hypot(vx, vy)
	if d == 0 {
		return defaultNormal
	}
	return r3.Vec{X: vx / d, Y: vy / d}
}
