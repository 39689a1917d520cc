// Package notify publishes completed forecast events to an MQTT broker as a
// fire-and-forget side channel for downstream consumers (dashboards, alert
// pipelines). Publishing never blocks the response path: failures surface as
// sink errors that the caller logs and drops.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/jdalisay/anihan/core/factory"
	coremetrics "github.com/jdalisay/anihan/core/metrics"
	"github.com/jdalisay/anihan/infra/logger"
)

// Config defines the connection parameters for the MQTT publisher.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// pahoClient narrows the Paho surface for testability.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends forecast events over MQTT. It implements the metrics sink
// recorder capabilities so it can ride the regular sink fanout.
type Publisher struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewPublisher connects to the broker and returns a ready publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("broker is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = "anihan/forecasts"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "anihan-notify"
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	cli := newMQTTClient(opts)
	token := cli.Connect()
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %v", token.Error())
	}
	return &Publisher{cli: cli, topic: cfg.Topic, qos: cfg.QoS, log: logger.New("notify")}, nil
}

// RecordForecast publishes the event as JSON on the configured topic.
func (p *Publisher) RecordForecast(ev coremetrics.ForecastEvent) error {
	if !p.cli.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}
	payload, err := json.Marshal(map[string]any{
		"request_id": ev.RequestID,
		"species":    ev.Species,
		"province":   ev.Province,
		"city":       ev.City,
		"points":     ev.Points,
		"success":    ev.Error == "",
		"time":       ev.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	token := p.cli.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(2*time.Second) || token.Error() != nil {
		return fmt.Errorf("mqtt publish: %v", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.cli.Disconnect(250)
	return nil
}

func init() {
	_ = coremetrics.RegisterSink("mqtt", func(conf map[string]any) (coremetrics.Sink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPublisher(c)
	})
}
