package ledmatrix

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"starfinder/internal/pipeline"
)

const (
	topicPointing = "starfinder/pointing"
	topicFrame    = "starfinder/frame"
)

// MQTTEmitter publishes pointing and frame messages for off-box consumers.
type MQTTEmitter struct {
	client mqtt.Client
}

func ConnectMQTT(broker, clientID string) (*MQTTEmitter, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("ledmatrix: mqtt connect %s: %w", broker, token.Error())
	}
	return NewMQTTEmitter(client), nil
}

// NewMQTTEmitter wraps an already-connected client.
func NewMQTTEmitter(client mqtt.Client) *MQTTEmitter {
	return &MQTTEmitter{client: client}
}

func (e *MQTTEmitter) Emit(out pipeline.Output) error {
	pb, err := json.Marshal(out.Pose)
	if err != nil {
		return err
	}
	if token := e.client.Publish(topicPointing, 0, false, pb); token.Wait() && token.Error() != nil {
		return fmt.Errorf("ledmatrix: mqtt publish %s: %w", topicPointing, token.Error())
	}

	fb, err := marshalFrame(out)
	if err != nil {
		return err
	}
	if token := e.client.Publish(topicFrame, 0, false, fb); token.Wait() && token.Error() != nil {
		return fmt.Errorf("ledmatrix: mqtt publish %s: %w", topicFrame, token.Error())
	}
	return nil
}

func (e *MQTTEmitter) Close() error {
	e.client.Disconnect(250)
	return nil
}
