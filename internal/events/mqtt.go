package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttWait = 5 * time.Second

// MQTTPublisher publishes events with QoS 1. Dots in subjects become topic
// separators.
type MQTTPublisher struct {
	client mqtt.Client
}

func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(mqttWait)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttWait) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, err)
	}
	return &MQTTPublisher{client: client}, nil
}

// Topic maps a subject to an MQTT topic.
func Topic(subject string) string {
	return strings.ReplaceAll(subject, ".", "/")
}

func (p *MQTTPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	token := p.client.Publish(Topic(subject), 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", Topic(subject), err)
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
