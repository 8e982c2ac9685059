package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tiiuae/rclgo/pkg/ros2"

	"github.com/skycircuit/hoopmission/internal/config"
	"github.com/skycircuit/hoopmission/internal/mission"
	"github.com/skycircuit/hoopmission/internal/modes"
	"github.com/skycircuit/hoopmission/internal/rosvehicle"
	"github.com/skycircuit/hoopmission/internal/telemetry"
	"github.com/skycircuit/hoopmission/internal/types"
	"github.com/skycircuit/hoopmission/internal/vehicle"
	"github.com/skycircuit/hoopmission/internal/vision"
)

var (
	deafultFlagSet    = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	deviceID          = deafultFlagSet.String("device_id", "", "The provisioned device id")
	configPath        = deafultFlagSet.String("config", "./mission.yaml", "Mission parameter file")
	mqttBrokerAddress = deafultFlagSet.String("mqtt_broker", "", "MQTT broker protocol, address and port")
	vehicleBackend    = deafultFlagSet.String("vehicle", "mock", "Vehicle backend: mock or ros2")
	visionBackend     = deafultFlagSet.String("vision", "static", "Vision backend: static or mqtt")
)

func main() {
	deafultFlagSet.Parse(os.Args[1:])

	// attach sigint & sigterm listeners
	terminationSignals := make(chan os.Signal, 1)
	signal.Notify(terminationSignals, syscall.SIGINT, syscall.SIGTERM)

	// quitFunc will be called when process is terminated
	ctx, quitFunc := context.WithCancel(context.Background())

	// wait group will make sure all goroutines have time to clean up
	var wg sync.WaitGroup

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Config: %v - using defaults", err)
	}
	tick := time.Duration(cfg.TickMS) * time.Millisecond

	var mqttClient mqtt.Client
	if *mqttBrokerAddress != "" {
		mqttClient = newMQTTClient(*mqttBrokerAddress, *deviceID)
		defer mqttClient.Disconnect(1000)
	}

	var uav vehicle.Vehicle
	var mock *vehicle.Mock
	switch *vehicleBackend {
	case "mock":
		mock = vehicle.NewMock()
		uav = mock
	case "ros2":
		rclArgs, rclErr := ros2.NewRCLArgs("")
		if rclErr != nil {
			log.Fatal(rclErr)
		}
		rclContext, rclErr := ros2.NewContext(&wg, 0, rclArgs)
		if rclErr != nil {
			log.Fatal(rclErr)
		}
		defer rclContext.Close()
		rclNode, rclErr := rclContext.NewNode("missionengine", *deviceID)
		if rclErr != nil {
			log.Fatal(rclErr)
		}
		rv, err := rosvehicle.New(ctx, &wg, rclNode)
		if err != nil {
			log.Fatal(err)
		}
		defer rv.Close()
		uav = rv
	default:
		log.Fatalf("Unknown vehicle backend: %s", *vehicleBackend)
	}

	var eyes vision.Provider
	switch *visionBackend {
	case "static":
		eyes = vision.NewStatic(simulatedDetections(cfg)...)
	case "mqtt":
		if mqttClient == nil {
			log.Fatal("Vision backend 'mqtt' requires -mqtt_broker")
		}
		p, err := vision.NewMQTT(mqttClient, cfg.VisionTopic)
		if err != nil {
			log.Fatal(err)
		}
		eyes = p
	default:
		log.Fatalf("Unknown vision backend: %s", *visionBackend)
	}

	handlers := []types.EventHandler{types.NewLogger()}
	if mqttClient != nil {
		handlers = append(handlers, telemetry.New(mqttClient, *deviceID))
	}
	bus := types.NewEventBus(make(chan types.Event, 100), handlers...)
	go bus.Run(ctx, &wg)

	mc := &mission.Context{}
	seq := mission.NewSequencer(*deviceID, tick, mc, bus.Post, buildModes(cfg, uav, eyes, mc)...)

	seqDone := make(chan struct{})
	go func() {
		seq.Run(ctx, &wg)
		close(seqDone)
	}()

	if mock != nil {
		go runMockStepper(ctx, &wg, mock, tick)
	}

	// wait for termination or mission end, then close quit to signal all
	select {
	case <-terminationSignals:
	case <-seqDone:
		log.Printf("Mission finished")
	}
	// cancel the main context
	log.Printf("Shutting down..")
	quitFunc()

	// wait until goroutines have done their cleanup
	log.Printf("Waiting for routines to finish...")
	wg.Wait()
	log.Printf("Signing off - BYE")
}

func buildModes(cfg config.Config, uav vehicle.Vehicle, eyes vision.Provider, mc *mission.Context) []mission.Mode {
	list := []mission.Mode{
		modes.NewLaunchAndScan(uav, eyes, mc, cfg.LaunchScan),
		modes.NewPlanRoute(uav, mc, cfg.PlanRoute),
	}
	// One visit cycle per possible route entry; the cycle modes complete
	// immediately once the route runs out.
	for i := 0; i < cfg.PlanRoute.MaxTargets; i++ {
		list = append(list,
			modes.NewGoToPreApproach(uav, mc, cfg.PreApproach),
			modes.NewCenterInImage(uav, eyes, cfg.CenterImage),
			modes.NewCommitTraverse(uav, mc, cfg.Traverse),
		)
	}
	return append(list,
		modes.NewReturnHome(uav, mc, cfg.ReturnHome),
		modes.NewLand(uav, cfg.Land),
	)
}

func simulatedDetections(cfg config.Config) []types.Detection {
	dets := make([]types.Detection, 0, len(cfg.SimulatedHoops))
	for _, h := range cfg.SimulatedHoops {
		d := types.Detection{
			Position:    r3.Vec{X: h.X, Y: h.Y, Z: h.Z},
			HasPosition: true,
		}
		if h.BearingDeg != nil {
			d.Bearing = *h.BearingDeg * math.Pi / 180
			d.HasBearing = true
		}
		dets = append(dets, d)
	}
	return dets
}

func runMockStepper(ctx context.Context, wg *sync.WaitGroup, mock *vehicle.Mock, tick time.Duration) {
	wg.Add(1)
	defer wg.Done()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mock.Step(tick.Seconds())
		}
	}
}

func newMQTTClient(serverAddress, deviceID string) mqtt.Client {
	log.Printf("MQTT address: %v", serverAddress)

	opts := mqtt.NewClientOptions().
		AddBroker(serverAddress).
		SetClientID(deviceID).
		SetProtocolVersion(4) // Use MQTT 3.1.1

	client := mqtt.NewClient(opts)

	for {
		log.Printf("Connecting MQTT...")
		tok := client.Connect()
		if tok.WaitTimeout(10 * time.Second) {
			if err := tok.Error(); err != nil {
				log.Fatal(err)
			}
			break
		}
		log.Println("Connection Timeout")
	}
	log.Printf("..Connected")

	return client
}
