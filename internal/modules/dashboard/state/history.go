package state

import (
	"fmt"
	"time"

	"iot-dashboard/internal/modules/dashboard/types"
)

const DefaultHistoryLimit = 50

type HistoryRow struct {
	Time        string `json:"time"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Light       string `json:"light"`
}

// truncateHistory keeps the first limit readings; the backend sends newest first.
func truncateHistory(readings []types.Reading, limit int) []types.Reading {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(readings) > limit {
		readings = readings[:limit]
	}
	return append([]types.Reading(nil), readings...)
}

// RenderHistory always builds a fresh row set; it never appends to a previous render.
func RenderHistory(readings []types.Reading, limit int, loc *time.Location) []HistoryRow {
	readings = truncateHistory(readings, limit)
	rows := make([]HistoryRow, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, HistoryRow{
			Time:        formatTime(r.Timestamp, HistoryTimeLayout, loc),
			Temperature: fmt.Sprintf("%.1f", r.Temperature),
			Humidity:    fmt.Sprintf("%.1f", r.Humidity),
			Light:       fmt.Sprintf("%.0f", r.Light),
		})
	}
	return rows
}
