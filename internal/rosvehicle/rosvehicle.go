// Package rosvehicle adapts the ROS2/PX4 control surface to the mission's
// vehicle interface. Position setpoints go out as single-pose nav_msgs/Path
// messages plus mavlinkcmd strings the flight stack understands; velocity
// setpoints as geometry_msgs/Twist. Pose comes from the
// VehicleLocalPosition stream.
package rosvehicle

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tiiuae/rclgo/pkg/ros2"
	builtin_interfaces "github.com/tiiuae/rclgo/pkg/ros2/msgs/builtin_interfaces/msg"
	geometry_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/geometry_msgs/msg"
	nav_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/nav_msgs/msg"
	px4_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/px4_msgs/msg"
	std_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/std_msgs/msg"

	"github.com/skycircuit/hoopmission/internal/types"
	"github.com/skycircuit/hoopmission/internal/vehicle"
)

type Vehicle struct {
	node *ros2.Node

	pubPath    *ros2.Publisher
	pubMavlink *ros2.Publisher
	pubTwist   *ros2.Publisher

	mu     sync.Mutex
	pose   types.Pose
	poseOK bool
}

func New(ctx context.Context, wg *sync.WaitGroup, node *ros2.Node) (*Vehicle, error) {
	pubPath, err := node.NewPublisher("path", &nav_msgs.Path{})
	if err != nil {
		return nil, errors.WithMessage(err, "could not create path publisher")
	}
	pubMavlink, err := node.NewPublisher("mavlinkcmd", &std_msgs.String{})
	if err != nil {
		return nil, errors.WithMessage(err, "could not create mavlinkcmd publisher")
	}
	pubTwist, err := node.NewPublisher("cmd_vel", &geometry_msgs.Twist{})
	if err != nil {
		return nil, errors.WithMessage(err, "could not create cmd_vel publisher")
	}

	v := &Vehicle{
		node:       node,
		pubPath:    pubPath,
		pubMavlink: pubMavlink,
		pubTwist:   pubTwist,
	}
	go v.runLocalPositionSubscriber(ctx, wg)

	return v, nil
}

func (v *Vehicle) Close() {
	v.pubPath.Close()
	v.pubMavlink.Close()
	v.pubTwist.Close()
}

func (v *Vehicle) Capabilities() vehicle.Capabilities {
	return vehicle.Capabilities{
		PositionSetpoint: true,
		PositionYaw:      true,
		VelocitySetpoint: true,
		Velocity:         true,
		YawRate:          true,
		Arm:              true,
		Takeoff:          true,
		Land:             true,
		// The offboard keepalive is owned by the flight stack side.
		OffboardHeartbeat: false,
	}
}

func (v *Vehicle) CurrentPose() (types.Pose, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pose, v.poseOK
}

func (v *Vehicle) PublishPositionSetpoint(p r3.Vec) vehicle.Result {
	v.pubPath.Publish(createPath(p, nil))
	return vehicle.Ok()
}

func (v *Vehicle) PublishPositionSetpointWithYaw(p r3.Vec, yaw float64) vehicle.Result {
	v.pubPath.Publish(createPath(p, &yaw))
	return vehicle.Ok()
}

func (v *Vehicle) PublishVelocitySetpoint(vel vehicle.Velocity) vehicle.Result {
	twist := geometry_msgs.NewTwist()
	twist.Linear.X = vel.VX
	twist.Linear.Y = vel.VY
	twist.Linear.Z = vel.VZ
	twist.Angular.Z = vel.YawRate
	v.pubTwist.Publish(twist)
	return vehicle.Ok()
}

func (v *Vehicle) SetVelocity(vel r3.Vec) vehicle.Result {
	twist := geometry_msgs.NewTwist()
	twist.Linear.X = vel.X
	twist.Linear.Y = vel.Y
	twist.Linear.Z = vel.Z
	v.pubTwist.Publish(twist)
	return vehicle.Ok()
}

func (v *Vehicle) SetYawRate(rate float64) vehicle.Result {
	twist := geometry_msgs.NewTwist()
	twist.Angular.Z = rate
	v.pubTwist.Publish(twist)
	return vehicle.Ok()
}

func (v *Vehicle) Arm() vehicle.Result {
	v.pubMavlink.Publish(createString("arm"))
	return vehicle.Ok()
}

func (v *Vehicle) Takeoff(altitude float64) vehicle.Result {
	// The takeoff altitude is a flight stack parameter; the command itself
	// carries none.
	log.Printf("ROS vehicle: takeoff (requested altitude %.1f m set by flight stack)", altitude)
	v.pubMavlink.Publish(createString("takeoff"))
	return vehicle.Ok()
}

func (v *Vehicle) Land() vehicle.Result {
	v.pubMavlink.Publish(createString("land"))
	return vehicle.Ok()
}

func (v *Vehicle) EnableOffboardHeartbeat() vehicle.Result {
	return vehicle.NotSupported("offboard heartbeat")
}

func (v *Vehicle) runLocalPositionSubscriber(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	sub, rclErr := v.node.NewSubscription("VehicleLocalPosition_PubSubTopic", &px4_msgs.VehicleLocalPosition{}, func(s *ros2.Subscription) {
		var m px4_msgs.VehicleLocalPosition
		_, rlcErr := s.TakeMessage(&m)
		if rlcErr != nil {
			log.Print("TakeMessage failed: runLocalPositionSubscriber")
			return
		}

		v.mu.Lock()
		v.pose = types.Pose{
			Position: r3.Vec{X: float64(m.X), Y: float64(m.Y), Z: float64(m.Z)},
			Yaw:      float64(m.Heading),
		}
		v.poseOK = m.XyValid && m.ZValid
		v.mu.Unlock()
	})

	if rclErr != nil {
		log.Fatalf("Unable to subscribe to topic 'VehicleLocalPosition_PubSubTopic': %v", rclErr)
	}

	err := sub.Spin(ctx, 5*time.Second)
	if err != nil {
		log.Printf("Subscription failed: %v", err)
	}
}

func createString(value string) *std_msgs.String {
	rosmsg := std_msgs.NewString()
	rosmsg.Data.SetDefaults(value)
	return rosmsg
}

func createPath(p r3.Vec, yaw *float64) *nav_msgs.Path {
	path := nav_msgs.NewPath()
	path.Header = *std_msgs.NewHeader()
	path.Header.Stamp = *builtin_interfaces.NewTime()
	path.Header.FrameId = "map"

	point := geometry_msgs.NewPoint()
	point.X = p.X
	point.Y = p.Y
	point.Z = p.Z

	pose := geometry_msgs.NewPoseStamped()
	pose.Header = *std_msgs.NewHeader()
	pose.Header.Stamp = *builtin_interfaces.NewTime()
	pose.Header.FrameId = "map"
	pose.Pose.Position = *point
	if yaw != nil {
		pose.Pose.Orientation.Z = math.Sin(*yaw / 2)
		pose.Pose.Orientation.W = math.Cos(*yaw / 2)
	}

	path.Poses = []geometry_msgs.PoseStamped{*pose}
	return path
}
