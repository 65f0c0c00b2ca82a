package mqtt

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"iot-dashboard/internal/config"
	"iot-dashboard/internal/modules/dashboard/types"
)

func newTestSubscriber(t *testing.T) (*Subscriber, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := config.Config{
		MQTTBroker:      "127.0.0.1",
		MQTTPort:        1883,
		MQTTClientID:    "test",
		MQTTTopic:       "iot/sensor/data",
		DisplayLocation: time.UTC,
	}
	s := NewSubscriber(cfg, logger)
	s.now = func() time.Time { return time.Date(2025, 2, 3, 14, 30, 0, 0, time.UTC) }
	return s, &buf
}

func TestHandleMessage_forwardsValidReading(t *testing.T) {
	s, _ := newTestSubscriber(t)
	var got []types.Reading
	s.SetReadingHandler(func(r types.Reading) error {
		got = append(got, r)
		return nil
	})

	s.handleMessage("iot/sensor/data", []byte(`{"suhu":24.5,"humidity":60.2,"lux":300}`))

	if len(got) != 1 {
		t.Fatalf("handler called %d times; want 1", len(got))
	}
	if got[0].Temperature != 24.5 || got[0].Humidity != 60.2 || got[0].Light != 300 {
		t.Errorf("reading = %+v", got[0])
	}
}

func TestHandleMessage_dropsInvalid(t *testing.T) {
	s, buf := newTestSubscriber(t)
	called := false
	s.SetReadingHandler(func(types.Reading) error {
		called = true
		return nil
	})

	s.handleMessage("iot/sensor/data", []byte(`{"suhu":24.5}`))

	if called {
		t.Error("handler called for invalid payload")
	}
	if !strings.Contains(buf.String(), "invalid sensor message") {
		t.Errorf("log missing warning; got %q", buf.String())
	}
}

func TestHandleMessage_logsHandlerError(t *testing.T) {
	s, buf := newTestSubscriber(t)
	s.SetReadingHandler(func(types.Reading) error { return errors.New("dashboard stopped") })

	s.handleMessage("iot/sensor/data", []byte(`{"suhu":1,"humidity":2,"lux":3}`))

	if !strings.Contains(buf.String(), "reading handler failed") {
		t.Errorf("log missing handler failure; got %q", buf.String())
	}
}

func TestHandleMessage_noHandler(t *testing.T) {
	s, _ := newTestSubscriber(t)
	s.handleMessage("iot/sensor/data", []byte(`{"suhu":1,"humidity":2,"lux":3}`))
}

func TestDisconnect_idempotentWithoutConnect(t *testing.T) {
	s, _ := newTestSubscriber(t)
	s.Disconnect()
	s.Disconnect()

	if s.IsConnected() {
		t.Error("IsConnected() = true after Disconnect")
	}
}

func TestConnect_afterDisconnect(t *testing.T) {
	s, _ := newTestSubscriber(t)
	s.Disconnect()

	if err := s.Connect(context.Background()); !errors.Is(err, ErrSubscriberStopped) {
		t.Fatalf("Connect() error = %v, want ErrSubscriberStopped", err)
	}
}
