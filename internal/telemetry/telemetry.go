package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/skycircuit/hoopmission/internal/types"
)

const (
	qos    = 1
	retain = false
)

// handler forwards mission events to the cloud MQTT broker. Publishing
// happens on its own loop so a slow broker never stalls the event bus.
type handler struct {
	client   mqtt.Client
	deviceID string
	inbox    chan types.Event
}

func New(client mqtt.Client, deviceID string) types.EventHandler {
	return &handler{client, deviceID, make(chan types.Event, 10)}
}

func (h *handler) Receive(ev types.Event) {
	select {
	case h.inbox <- ev:
	default:
		log.Printf("Telemetry: inbox full - dropping event %s", ev.EventType)
	}
}

func (h *handler) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	topic := fmt.Sprintf("/devices/%s/events/mission", h.deviceID)
	for {
		select {
		case <-ctx.Done():
			log.Println("Telemetry shutting down")
			return
		case ev := <-h.inbox:
			b, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Telemetry: could not marshal event: %v", err)
				continue
			}
			tok := h.client.Publish(topic, qos, retain, string(b))
			if !tok.WaitTimeout(10 * time.Second) {
				log.Printf("Telemetry: could not publish within 10s")
				continue
			}
			if err := tok.Error(); err != nil {
				log.Printf("Telemetry: publish failed: %v", err)
			}
		}
	}
}
