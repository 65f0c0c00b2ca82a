package state

import (
	"time"

	"iot-dashboard/internal/modules/dashboard/types"
)

// FetchKind identifies one family of backend fetches for the stale-response guard.
type FetchKind int

const (
	FetchLatest FetchKind = iota
	FetchStatistics
	FetchHistory
)

func (k FetchKind) String() string {
	switch k {
	case FetchLatest:
		return "latest"
	case FetchStatistics:
		return "statistics"
	case FetchHistory:
		return "history"
	default:
		return "unknown"
	}
}

type Options struct {
	SeriesCapacity int
	HistoryLimit   int
	Location       *time.Location
}

// AppState is everything the dashboard displays. It is not safe for
// concurrent use; the controller's event loop is its only owner.
type AppState struct {
	loc          *time.Location
	historyLimit int

	Series        *SeriesBuffer
	Latest        *types.Reading
	LastUpdated   time.Time
	Statistics    *types.Statistics
	History       []types.Reading
	Relay         types.RelayState
	Notifications *Notifier
	Exports       *Exports

	lastApplied map[FetchKind]uint64
}

func New(opts Options) *AppState {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &AppState{
		loc:           loc,
		historyLimit:  limit,
		Series:        NewSeriesBuffer(opts.SeriesCapacity),
		Notifications: &Notifier{},
		Exports:       NewExports(),
		lastApplied:   make(map[FetchKind]uint64),
	}
}

// Accept records seq as applied for kind unless a newer one already was.
func (s *AppState) Accept(kind FetchKind, seq uint64) bool {
	if seq <= s.lastApplied[kind] {
		return false
	}
	s.lastApplied[kind] = seq
	return true
}

// ApplyLatest updates the cards, the chart window and the last-update time.
func (s *AppState) ApplyLatest(r types.Reading, now time.Time) {
	latest := r
	s.Latest = &latest
	s.Series.Push(formatTime(r.Timestamp, ChartLabelLayout, s.loc), r)
	s.LastUpdated = now
}

func (s *AppState) ApplyStatistics(st types.Statistics) {
	s.Statistics = &st
}

// ResetStatistics drops the summary so the view falls back to placeholders.
func (s *AppState) ResetStatistics() {
	s.Statistics = nil
}

func (s *AppState) ApplyHistory(readings []types.Reading) {
	s.History = truncateHistory(readings, s.historyLimit)
}

func (s *AppState) ApplyRelay(r types.RelayState) {
	s.Relay = r
}

type ChartView struct {
	SeriesSnapshot
	Capacity int `json:"capacity"`
}

// DashboardView is the complete rendered dashboard.
type DashboardView struct {
	Cards         CardsView          `json:"cards"`
	Statistics    StatisticsView     `json:"statistics"`
	LastUpdated   string             `json:"lastUpdated"`
	Chart         ChartView          `json:"chart"`
	History       []HistoryRow       `json:"history"`
	Relay         RelayView          `json:"relay"`
	Notifications []NotificationView `json:"notifications"`
	Exports       []ExportView       `json:"exports"`
}

// Render is a pure function of s; the returned view shares no memory with it.
func Render(s *AppState) DashboardView {
	return DashboardView{
		Cards:         RenderCards(s.Latest),
		Statistics:    RenderStatistics(s.Statistics),
		LastUpdated:   formatTime(s.LastUpdated, HistoryTimeLayout, s.loc),
		Chart:         ChartView{SeriesSnapshot: s.Series.Snapshot(), Capacity: s.Series.Capacity()},
		History:       RenderHistory(s.History, s.historyLimit, s.loc),
		Relay:         RenderRelay(s.Relay),
		Notifications: RenderNotifications(s.Notifications.List()),
		Exports:       RenderExports(s.Exports),
	}
}
