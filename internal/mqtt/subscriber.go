package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/AlSimons/graph-ambient-weather/internal/config"
)

// Handler receives every valid telemetry message.
type Handler func(ctx context.Context, t Telemetry) error

type Subscriber struct {
	client    paho.Client
	cfg       config.Config
	logger    *slog.Logger
	handler   Handler
	mu        sync.RWMutex
	connected bool
	// subscribed is set once the first subscription succeeds; reconnects
	// subscribe again because sessions are clean.
	subscribed bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// ClientID returns the configured client id or a fresh wxrecord-<uuid>.
func ClientID(cfg config.Config) string {
	if cfg.MQTTClientID != "" {
		return cfg.MQTTClientID
	}
	return "wxrecord-" + uuid.NewString()
}

func NewSubscriber(cfg config.Config, logger *slog.Logger, handler Handler) *Subscriber {
	s := &Subscriber{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
		stopCh:  make(chan struct{}),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(ClientID(cfg))
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		if s.wasSubscribed() {
			go func() {
				if err := s.subscribe(); err != nil {
					logger.Error("mqtt resubscribe failed", "topic", cfg.MQTTTopic, "error", err)
				}
			}()
		}
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = paho.NewClient(opts)
	return s
}

// Connect connects to the broker and subscribes to the telemetry topic. It
// gives up when ctx is done or the subscriber is stopped.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("subscriber stopped")
	default:
	}
	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()
	const poll = 200 * time.Millisecond
	for !token.WaitTimeout(poll) {
		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return fmt.Errorf("subscriber stopped")
		default:
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	if err := s.subscribe(); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("subscribe: %w", err)
	}
	s.mu.Lock()
	s.subscribed = true
	s.mu.Unlock()
	return nil
}

func (s *Subscriber) subscribe() error {
	topic := s.cfg.MQTTTopic
	const qos = byte(1)

	token := s.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		s.handleMessage(context.Background(), msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

// handleMessage decodes, validates and dispatches one payload. Bad messages
// are logged and dropped.
func (s *Subscriber) handleMessage(ctx context.Context, topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	var t Telemetry
	if err := json.Unmarshal(payload, &t); err != nil {
		s.logger.Warn("failed to parse telemetry message", "topic", topic, "error", err, "payload", string(payload))
		return
	}
	if err := t.Validate(); err != nil {
		s.logger.Warn("invalid telemetry message", "topic", topic, "station_id", t.StationID, "error", err)
		return
	}
	if s.cfg.MQTTStationID != "" && t.StationID != s.cfg.MQTTStationID {
		s.logger.Debug("ignoring telemetry from other station", "station_id", t.StationID)
		return
	}
	if s.handler == nil {
		return
	}
	if err := s.handler(ctx, t); err != nil {
		s.logger.Error("message handler failed", "topic", topic, "station_id", t.StationID, "error", err)
		return
	}
	s.logger.Debug("processed telemetry message", "station_id", t.StationID, "timestamp", t.Timestamp)
}

func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber. Safe to call more than once.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}
	if s.client != nil {
		s.client.Disconnect(250)
	}
	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

func (s *Subscriber) wasSubscribed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscribed
}
