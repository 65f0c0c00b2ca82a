package types

import (
	"fmt"
	"strings"
	"time"
)

// Reading is one timestamped sensor sample.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Light       float64   `json:"light"`
}

type Summary struct {
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
	Average float64 `json:"average"`
}

// Statistics is the backend's aggregate over all stored readings.
// Humidity and Light are nil when the backend omits them.
type Statistics struct {
	Temperature  Summary  `json:"temperature"`
	Humidity     *Summary `json:"humidity,omitempty"`
	Light        *Summary `json:"light,omitempty"`
	TotalRecords *int     `json:"totalRecords,omitempty"`
}

type RelayState string

const (
	RelayUnknown RelayState = ""
	RelayOn      RelayState = "ON"
	RelayOff     RelayState = "OFF"
)

func ParseRelayState(s string) (RelayState, error) {
	switch RelayState(strings.ToUpper(strings.TrimSpace(s))) {
	case RelayOn:
		return RelayOn, nil
	case RelayOff:
		return RelayOff, nil
	default:
		return RelayUnknown, fmt.Errorf("invalid relay state %q (allowed: ON, OFF)", s)
	}
}

// RelayAck is the backend's answer to a relay command.
type RelayAck struct {
	Status  string     `json:"status"`
	State   RelayState `json:"relay_state,omitempty"`
	Message string     `json:"message,omitempty"`
}

func (a RelayAck) Succeeded() bool {
	return a.Status == "success"
}

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

type ExportKind string

const (
	ExportHistory    ExportKind = "history"
	ExportStatistics ExportKind = "statistics"
)

func ParseExportKind(s string) (ExportKind, error) {
	switch ExportKind(s) {
	case ExportHistory, ExportStatistics:
		return ExportKind(s), nil
	default:
		return "", fmt.Errorf("invalid export kind %q (allowed: history, statistics)", s)
	}
}
