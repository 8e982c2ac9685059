package vision

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/skycircuit/hoopmission/internal/types"
)

// MQTTProvider keeps the most recent detection frame published as JSON on an
// MQTT topic. Only the latest frame is retained; stale frames are dropped.
type MQTTProvider struct {
	mu     sync.Mutex
	latest []types.Detection
}

func NewMQTT(client mqtt.Client, topic string) (*MQTTProvider, error) {
	p := &MQTTProvider{}

	token := client.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		var dets []types.Detection
		if err := json.Unmarshal(msg.Payload(), &dets); err != nil {
			log.Printf("Vision: could not unmarshal detections: %v", err)
			return
		}
		p.mu.Lock()
		p.latest = dets
		p.mu.Unlock()
	})
	if !token.WaitTimeout(10 * time.Second) {
		return nil, errors.Errorf("could not subscribe to '%s' within 10s", topic)
	}
	if err := token.Error(); err != nil {
		return nil, errors.WithMessagef(err, "could not subscribe to '%s'", topic)
	}

	return p, nil
}

func (p *MQTTProvider) LatestDetections() []types.Detection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.Detection(nil), p.latest...)
}
