package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"iot-dashboard/internal/modules/dashboard/types"
)

// timestampLayout is how the backend formats timestamps (no zone).
const timestampLayout = "2006-01-02 15:04:05"

type readingPayload struct {
	Timestamp string   `json:"timestamp"`
	Suhu      *float64 `json:"suhu"`
	Humidity  *float64 `json:"humidity"`
	Lux       *float64 `json:"lux"`
}

// toReading applies the presence checks; loc is used for zone-less timestamps.
func (p readingPayload) toReading(loc *time.Location) (types.Reading, error) {
	var missing []string
	if p.Suhu == nil {
		missing = append(missing, "suhu")
	}
	if p.Humidity == nil {
		missing = append(missing, "humidity")
	}
	if p.Lux == nil {
		missing = append(missing, "lux")
	}
	if len(missing) > 0 {
		return types.Reading{}, fmt.Errorf("%w: missing %s", ErrIncompleteReading, strings.Join(missing, ", "))
	}

	ts, err := ParseTimestamp(p.Timestamp, loc)
	if err != nil {
		return types.Reading{}, err
	}
	return types.Reading{
		Timestamp:   ts,
		Temperature: *p.Suhu,
		Humidity:    *p.Humidity,
		Light:       *p.Lux,
	}, nil
}

// ParseTimestamp accepts the backend layout in loc, or RFC 3339.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing timestamp", ErrIncompleteReading)
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(timestampLayout, s, loc)
	if err == nil {
		return t, nil
	}
	t, err2 := time.Parse(time.RFC3339, s)
	if err2 != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w; RFC3339: %w", s, err, err2)
	}
	return t, nil
}

type summaryPayload struct {
	Minimum *float64 `json:"minimum"`
	Maximum *float64 `json:"maximum"`
	Average *float64 `json:"average"`
}

func (p *summaryPayload) toSummary() (types.Summary, bool) {
	if p == nil || p.Minimum == nil || p.Maximum == nil || p.Average == nil {
		return types.Summary{}, false
	}
	return types.Summary{Minimum: *p.Minimum, Maximum: *p.Maximum, Average: *p.Average}, true
}

type statisticsPayload struct {
	Error        string          `json:"error"`
	Temperature  *summaryPayload `json:"temperature"`
	Humidity     *summaryPayload `json:"humidity"`
	Light        *summaryPayload `json:"light"`
	TotalRecords *int            `json:"total_records"`
}

func (p statisticsPayload) toStatistics() (types.Statistics, error) {
	if p.Error != "" {
		return types.Statistics{}, fmt.Errorf("%w: %s", ErrBackendReported, p.Error)
	}
	temp, ok := p.Temperature.toSummary()
	if !ok {
		return types.Statistics{}, fmt.Errorf("%w: temperature summary", ErrIncompleteStatistics)
	}
	out := types.Statistics{Temperature: temp, TotalRecords: p.TotalRecords}
	if s, ok := p.Humidity.toSummary(); ok {
		out.Humidity = &s
	}
	if s, ok := p.Light.toSummary(); ok {
		out.Light = &s
	}
	return out, nil
}

type relayRequest struct {
	State types.RelayState `json:"state"`
}

// decodeRelayAck tolerates a non-JSON body: the ack is then simply not a success.
func decodeRelayAck(body []byte) types.RelayAck {
	var ack types.RelayAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return types.RelayAck{Status: "invalid", Message: err.Error()}
	}
	return ack
}
