// Package mqtt publishes operation reports to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/service"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
)

const (
	statusSuffix   = "/status"
	keepAlive      = 20 // seconds
	publishTimeout = 5 * time.Second
)

// ErrNoBroker is returned by Connect when no broker URL is configured.
var ErrNoBroker = errors.New("mqtt: broker url is empty")

// Config describes the broker connection.
type Config struct {
	URL      string
	Topic    string
	Username string
	Password string
	// ClientID defaults to a random fireplace-cli-<id>.
	ClientID string
}

// Publisher sends every final report, retained, to <topic>/status with QoS 1.
// It implements service.StatusPublisher.
type Publisher struct {
	cm    *autopaho.ConnectionManager
	topic string
	log   *logger.Logger
}

var _ service.StatusPublisher = (*Publisher)(nil)

// Connect starts a connection manager that keeps reconnecting until ctx is
// canceled or Close is called. It does not wait for the first connection.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, ErrNoBroker
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("mqtt: parse url: %w", err)
	}
	log = logger.OrNop(log)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "fireplace-cli-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}

	cliCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{u},
		ConnectUsername:               cfg.Username,
		ConnectPassword:               []byte(cfg.Password),
		KeepAlive:                     keepAlive,
		CleanStartOnInitialConnection: true,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, connAck *paho.Connack) {
			log.Infow("mqtt_connected", "broker", u.Host)
		},
		OnConnectError: func(err error) {
			log.Warnw("mqtt_connect_failed", "broker", u.Host, "err", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID:      clientID,
			OnClientError: func(err error) { log.Warnw("mqtt_client_error", "err", err) },
			OnServerDisconnect: func(d *paho.Disconnect) {
				log.Warnw("mqtt_server_disconnect", "reason_code", d.ReasonCode)
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, cliCfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt: connect: %w", err)
	}
	return &Publisher{cm: cm, topic: strings.Trim(cfg.Topic, "/") + statusSuffix, log: log}, nil
}

// Topic is the topic reports are published to.
func (p *Publisher) Topic() string { return p.topic }

// Publish sends rep as JSON. It waits for the connection and the broker's
// acknowledgement for at most a few seconds.
func (p *Publisher) Publish(ctx context.Context, rep service.Report) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("mqtt: encode report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.cm.AwaitConnection(ctx); err != nil {
		return fmt.Errorf("mqtt: await connection: %w", err)
	}
	if _, err := p.cm.Publish(ctx, &paho.Publish{
		QoS:        1,
		Retain:     true,
		Topic:      p.topic,
		Payload:    payload,
		Properties: &paho.PublishProperties{ContentType: "application/json"},
	}); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", p.topic, err)
	}
	p.log.Debugw("mqtt_report_published", "topic", p.topic, "operation", rep.Operation)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close(ctx context.Context) error {
	return p.cm.Disconnect(ctx)
}
