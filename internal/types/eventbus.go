package types

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

type PostFn = func(ev Event)

type EventHandler interface {
	Run(ctx context.Context, wg *sync.WaitGroup, post PostFn)
	Receive(ev Event)
}

// EventBus fans mission events out to every registered handler.
type EventBus struct {
	bus       chan Event
	receivers []EventHandler
}

func NewEventBus(bus chan Event, receivers ...EventHandler) *EventBus {
	return &EventBus{bus, receivers}
}

// Post places an event on the bus. Warns when the bus is filling up so a
// slow handler is visible before events start blocking the poster.
func (eb *EventBus) Post(ev Event) {
	busLen := len(eb.bus)
	if busLen > cap(eb.bus)/2 {
		log.Printf("WARNING: Bus capacity over 50%% [ %d / %d ]", busLen, cap(eb.bus))
	}
	eb.bus <- ev
}

func (eb *EventBus) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for _, x := range eb.receivers {
		go x.Run(ctx, wg, eb.Post)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eb.bus:
			for _, x := range eb.receivers {
				x.Receive(ev)
			}
		}
	}
}

type logger struct {
}

func NewLogger() EventHandler {
	return &logger{}
}

func (l *logger) Receive(ev Event) {
	b, _ := json.Marshal(ev.Payload)

	log.Printf("Event: %s (%s): %s", ev.EventType, ev.Drone, string(b))
}

func (l *logger) Run(ctx context.Context, wg *sync.WaitGroup, post PostFn) {
}
