package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"iot-dashboard/internal/backend"
	"iot-dashboard/internal/modules/dashboard/types"
)

var ErrInvalidMessage = errors.New("invalid sensor message")

// sensorMessage is what the sensor node publishes. Timestamp is optional;
// the node usually leaves it to the receiver.
type sensorMessage struct {
	Suhu      *float64 `json:"suhu"`
	Humidity  *float64 `json:"humidity"`
	Lux       *float64 `json:"lux"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// ParseReading decodes and validates one live-feed payload. now stamps
// messages that carry no timestamp.
func ParseReading(payload []byte, now time.Time, loc *time.Location) (types.Reading, error) {
	var m sensorMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return types.Reading{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	var missing []string
	if m.Suhu == nil {
		missing = append(missing, "suhu")
	}
	if m.Humidity == nil {
		missing = append(missing, "humidity")
	}
	if m.Lux == nil {
		missing = append(missing, "lux")
	}
	if len(missing) > 0 {
		return types.Reading{}, fmt.Errorf("%w: missing %s", ErrInvalidMessage, strings.Join(missing, ", "))
	}

	if *m.Humidity < 0 || *m.Humidity > 100 {
		return types.Reading{}, fmt.Errorf("%w: humidity out of range: %v (must be 0-100)", ErrInvalidMessage, *m.Humidity)
	}
	if *m.Lux < 0 {
		return types.Reading{}, fmt.Errorf("%w: lux must not be negative: %v", ErrInvalidMessage, *m.Lux)
	}

	ts := now
	if m.Timestamp != "" {
		parsed, err := backend.ParseTimestamp(m.Timestamp, loc)
		if err != nil {
			return types.Reading{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		ts = parsed
	}

	return types.Reading{
		Timestamp:   ts,
		Temperature: *m.Suhu,
		Humidity:    *m.Humidity,
		Light:       *m.Lux,
	}, nil
}
