package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"iot-dashboard/internal/config"
	"iot-dashboard/internal/metrics"
	"iot-dashboard/internal/modules/dashboard/types"
)

// At most once; a missed reading is superseded by the next one.
const feedQoS byte = 0

const (
	tokenPoll        = 200 * time.Millisecond
	subscribeTimeout = 5 * time.Second
)

var ErrSubscriberStopped = errors.New("mqtt subscriber stopped")

// ReadingHandler receives every valid reading from the live feed.
type ReadingHandler func(r types.Reading) error

// Subscriber listens on the sensor topic and forwards readings to a handler.
type Subscriber struct {
	client mqtt.Client
	broker string
	topic  string
	loc    *time.Location
	logger *slog.Logger

	mu     sync.RWMutex
	online bool
	onRead ReadingHandler

	stopped  chan struct{}
	stopOnce sync.Once

	now func() time.Time
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Subscriber{
		broker:  fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort),
		topic:   cfg.MQTTTopic,
		loc:     cfg.DisplayLocation,
		logger:  logger.With("component", "mqtt", "topic", cfg.MQTTTopic),
		stopped: make(chan struct{}),
		now:     time.Now,
	}
	s.client = mqtt.NewClient(s.clientOptions(cfg.MQTTClientID))
	return s
}

func (s *Subscriber) clientOptions(clientID string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(time.Minute).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second)

	// A clean session forgets subscriptions, so subscribe again on every
	// reconnect. Subscribing blocks on the network and must not run on
	// paho's callback goroutine.
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		s.setOnline(true)
		s.logger.Info("live feed connected", "broker", s.broker)
		go func() {
			if err := s.subscribe(); err != nil {
				s.logger.Error("live feed subscribe failed", "error", err)
			}
		}()
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setOnline(false)
		s.logger.Warn("live feed connection lost", "error", err)
	})
	return opts
}

// SetReadingHandler must be called before Connect.
func (s *Subscriber) SetReadingHandler(h ReadingHandler) {
	s.mu.Lock()
	s.onRead = h
	s.mu.Unlock()
}

// Connect blocks until the first connection succeeds, ctx is done or the
// subscriber is stopped. Later reconnects are handled by the client.
func (s *Subscriber) Connect(ctx context.Context) error {
	if s.isStopped() {
		return ErrSubscriberStopped
	}
	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()
	for !token.WaitTimeout(tokenPoll) {
		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopped:
			s.client.Disconnect(0)
			return ErrSubscriberStopped
		default:
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect %s: %w", s.broker, err)
	}
	return nil
}

func (s *Subscriber) subscribe() error {
	token := s.client.Subscribe(s.topic, feedQoS, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(subscribeTimeout) {
		return fmt.Errorf("subscribe %s: timed out after %s", s.topic, subscribeTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, err)
	}
	s.logger.Info("live feed subscribed", "qos", feedQoS)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	r, err := ParseReading(payload, s.now(), s.loc)
	if err != nil {
		metrics.LiveReadingsTotal.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Warn("invalid sensor message", "error", err, "payload", string(payload))
		return
	}
	metrics.LiveReadingsTotal.WithLabelValues(metrics.ResultOK).Inc()
	s.logger.Debug("live reading",
		"temperature", r.Temperature,
		"humidity", r.Humidity,
		"light", r.Light,
	)

	s.mu.RLock()
	h := s.onRead
	s.mu.RUnlock()
	if h == nil {
		return
	}
	if err := h(r); err != nil {
		s.logger.Error("reading handler failed", "received_on", topic, "error", err)
	}
}

// IsConnected reports the broker connection state as seen by the callbacks
// and the underlying client.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	online := s.online
	s.mu.RUnlock()
	return online && s.client.IsConnected()
}

// Disconnect is idempotent.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopped) })

	if s.IsConnected() {
		s.client.Unsubscribe(s.topic).WaitTimeout(2 * time.Second)
	}
	s.client.Disconnect(250)

	s.setOnline(false)
	s.logger.Info("live feed disconnected")
}

func (s *Subscriber) isStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

func (s *Subscriber) setOnline(v bool) {
	s.mu.Lock()
	s.online = v
	s.mu.Unlock()
}
