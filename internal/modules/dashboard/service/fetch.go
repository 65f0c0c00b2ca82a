package service

import (
	"context"
	"errors"
	"time"

	"iot-dashboard/internal/metrics"
	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/modules/dashboard/types"
)

// FetchLatest loads the newest reading into the cards and the chart window.
// A failure leaves the display as it was and shows an error notification.
func (d *Dashboard) FetchLatest(ctx context.Context) error {
	seq := d.nextSeq(state.FetchLatest)
	start := time.Now()
	r, err := d.backend.Latest(ctx)
	observeFetch(state.FetchLatest, start)
	if canceled(err) {
		d.logger.Debug("fetch latest canceled", "seq", seq)
		return err
	}
	if err != nil {
		metrics.FetchesTotal.WithLabelValues(state.FetchLatest.String(), metrics.ResultError).Inc()
		d.logger.Warn("fetch latest failed", "seq", seq, "error", err)
		if dErr := d.Notify(ctx, MsgLatestFailed, types.NotificationError); dErr != nil {
			d.logger.Debug("latest failure not shown", "error", dErr)
		}
		return err
	}

	return d.dispatch(ctx, func(st *state.AppState) bool {
		if !st.Accept(state.FetchLatest, seq) {
			d.dropStale(state.FetchLatest, seq)
			return false
		}
		st.ApplyLatest(r, d.opts.Now())
		metrics.FetchesTotal.WithLabelValues(state.FetchLatest.String(), metrics.ResultOK).Inc()
		d.logger.Debug("latest applied", "seq", seq, "timestamp", r.Timestamp)
		return true
	})
}

// FetchStatistics refreshes the summary. Any failure, including a backend
// reported error, resets it to placeholders without a notification.
func (d *Dashboard) FetchStatistics(ctx context.Context) error {
	seq := d.nextSeq(state.FetchStatistics)
	start := time.Now()
	st, err := d.backend.Statistics(ctx)
	observeFetch(state.FetchStatistics, start)
	if canceled(err) {
		d.logger.Debug("fetch statistics canceled", "seq", seq)
		return err
	}
	if err != nil {
		metrics.FetchesTotal.WithLabelValues(state.FetchStatistics.String(), metrics.ResultError).Inc()
		d.logger.Warn("fetch statistics failed", "seq", seq, "error", err)
	}

	dErr := d.dispatch(ctx, func(s *state.AppState) bool {
		if !s.Accept(state.FetchStatistics, seq) {
			d.dropStale(state.FetchStatistics, seq)
			return false
		}
		if err != nil {
			s.ResetStatistics()
			return true
		}
		s.ApplyStatistics(st)
		metrics.FetchesTotal.WithLabelValues(state.FetchStatistics.String(), metrics.ResultOK).Inc()
		d.logger.Debug("statistics applied", "seq", seq)
		return true
	})
	if err != nil {
		return err
	}
	return dErr
}

// FetchHistory replaces the history table. On failure the table is kept.
func (d *Dashboard) FetchHistory(ctx context.Context) error {
	seq := d.nextSeq(state.FetchHistory)
	start := time.Now()
	readings, err := d.backend.History(ctx)
	observeFetch(state.FetchHistory, start)
	if canceled(err) {
		d.logger.Debug("fetch history canceled", "seq", seq)
		return err
	}
	if err != nil {
		metrics.FetchesTotal.WithLabelValues(state.FetchHistory.String(), metrics.ResultError).Inc()
		d.logger.Warn("fetch history failed", "seq", seq, "error", err)
		if dErr := d.Notify(ctx, MsgHistoryFailed, types.NotificationError); dErr != nil {
			d.logger.Debug("history failure not shown", "error", dErr)
		}
		return err
	}

	return d.dispatch(ctx, func(st *state.AppState) bool {
		if !st.Accept(state.FetchHistory, seq) {
			d.dropStale(state.FetchHistory, seq)
			return false
		}
		st.ApplyHistory(readings)
		metrics.FetchesTotal.WithLabelValues(state.FetchHistory.String(), metrics.ResultOK).Inc()
		d.logger.Debug("history applied", "seq", seq, "rows", len(readings))
		return true
	})
}

// ApplyLiveReading applies a pushed reading the same way a successful
// FetchLatest does. It takes a latest sequence number so a poll that started
// before the push cannot overwrite it.
func (d *Dashboard) ApplyLiveReading(ctx context.Context, r types.Reading) error {
	seq := d.nextSeq(state.FetchLatest)
	return d.dispatch(ctx, func(st *state.AppState) bool {
		if !st.Accept(state.FetchLatest, seq) {
			d.dropStale(state.FetchLatest, seq)
			return false
		}
		st.ApplyLatest(r, d.opts.Now())
		d.logger.Debug("live reading applied", "seq", seq, "timestamp", r.Timestamp)
		return true
	})
}

func (d *Dashboard) dropStale(kind state.FetchKind, seq uint64) {
	metrics.FetchesTotal.WithLabelValues(kind.String(), metrics.ResultStale).Inc()
	d.logger.Debug("stale response dropped", "kind", kind.String(), "seq", seq)
}

// canceled reports a fetch abandoned by its caller, as on scheduler Stop.
// Such a fetch changes nothing on screen.
func canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
