package state

import (
	"fmt"
	"time"
)

const (
	// HistoryTimeLayout is used for table rows and the last-update display.
	HistoryTimeLayout = "2006-01-02 15:04:05"
	// ChartLabelLayout is used for chart x-axis labels.
	ChartLabelLayout = "15:04:05"

	PlaceholderTemperature = "--°C"
	PlaceholderHumidity    = "--%"
	PlaceholderLight       = "-- Lux"
	PlaceholderText        = "--"
)

func formatTemperature(v float64) string { return fmt.Sprintf("%.1f°C", v) }
func formatHumidity(v float64) string    { return fmt.Sprintf("%.1f%%", v) }
func formatLight(v float64) string       { return fmt.Sprintf("%.0f Lux", v) }

func formatTime(t time.Time, layout string, loc *time.Location) string {
	if t.IsZero() {
		return PlaceholderText
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(layout)
}
