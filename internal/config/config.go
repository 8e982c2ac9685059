package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds all mission parameters. Load unmarshals the yaml file on top
// of Default(), so a partial file only overrides the parameters it names.
type Config struct {
	TickMS int `yaml:"tick_ms"`

	LaunchScan  LaunchScan  `yaml:"launch_scan"`
	PlanRoute   PlanRoute   `yaml:"plan_route"`
	PreApproach PreApproach `yaml:"pre_approach"`
	CenterImage CenterImage `yaml:"center_image"`
	Traverse    Traverse    `yaml:"traverse"`
	ReturnHome  ReturnHome  `yaml:"return_home"`
	Land        Land        `yaml:"land"`

	// SimulatedHoops feed the static vision provider in the mock run mode.
	SimulatedHoops []SimHoop `yaml:"simulated_hoops"`
	VisionTopic    string    `yaml:"vision_topic"`
}

type LaunchScan struct {
	TakeoffAltM    float64 `yaml:"takeoff_alt_m"`
	SpinMaxDeg     float64 `yaml:"spin_max_deg"`
	SpinRateDPS    float64 `yaml:"spin_rate_dps"`
	MinHoopsToStop int     `yaml:"min_hoops_to_stop"`
}

type PlanRoute struct {
	PreApproachDistM float64 `yaml:"pre_approach_dist_m"`
	MaxTargets       int     `yaml:"max_targets"`
}

type PreApproach struct {
	WaypointTolM float64 `yaml:"waypoint_tol_m"`
}

type CenterImage struct {
	KX   float64 `yaml:"kx"`
	KY   float64 `yaml:"ky"`
	KZ   float64 `yaml:"kz"`
	KYaw float64 `yaml:"kyaw"`

	VMaxXY     float64 `yaml:"vmax_xy"`
	VMaxZ      float64 `yaml:"vmax_z"`
	VMaxYawDPS float64 `yaml:"vmax_yaw_dps"`

	CenterTolPx    float64 `yaml:"center_tol_px"`
	RadiusTargetPx float64 `yaml:"radius_target_px"`
	TimeoutS       float64 `yaml:"timeout_s"`

	// StandoffAltM enables real altitude hold in the servo law. Left unset,
	// the altitude target is held at the current altitude each tick.
	StandoffAltM *float64 `yaml:"standoff_alt_m"`
}

type Traverse struct {
	TraverseDistM float64 `yaml:"traverse_dist_m"`
	ReachedTolM   float64 `yaml:"reached_tol_m"`
}

type ReturnHome struct {
	TolM float64 `yaml:"tol_m"`
}

type Land struct {
	GroundTolM float64 `yaml:"ground_tol_m"`
}

type SimHoop struct {
	X          float64  `yaml:"x"`
	Y          float64  `yaml:"y"`
	Z          float64  `yaml:"z"`
	BearingDeg *float64 `yaml:"bearing_deg"`
}

func Default() Config {
	return Config{
		TickMS: 50,
		LaunchScan: LaunchScan{
			TakeoffAltM:    3.0,
			SpinMaxDeg:     360.0,
			SpinRateDPS:    45.0,
			MinHoopsToStop: 3,
		},
		PlanRoute: PlanRoute{
			PreApproachDistM: 3.5,
			MaxTargets:       4,
		},
		PreApproach: PreApproach{
			WaypointTolM: 0.8,
		},
		CenterImage: CenterImage{
			KX:             0.002,
			KY:             0.002,
			KZ:             0.5,
			KYaw:           0.01,
			VMaxXY:         1.0,
			VMaxZ:          0.5,
			VMaxYawDPS:     30.0,
			CenterTolPx:    8.0,
			RadiusTargetPx: 80.0,
			TimeoutS:       12.0,
		},
		Traverse: Traverse{
			TraverseDistM: 4.0,
			ReachedTolM:   1.0,
		},
		ReturnHome: ReturnHome{
			TolM: 1.0,
		},
		Land: Land{
			GroundTolM: 0.3,
		},
		VisionTopic: "detections",
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	text, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.WithMessage(err, "could not read config file")
	}
	if err := yaml.Unmarshal(text, &cfg); err != nil {
		return cfg, errors.WithMessage(err, "could not parse config file")
	}

	return cfg, nil
}
